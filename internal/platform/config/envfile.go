package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"math/big"

	"github.com/joho/godotenv"
)

// secretKeyChars は署名鍵に使う文字です。
const secretKeyChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*(-_=+)"

// SecretKeyLength は生成する署名鍵の長さです。
const SecretKeyLength = 50

// GenerateSecretKey は署名鍵用のランダム文字列を生成します。
func GenerateSecretKey() (string, error) {
	out := make([]byte, SecretKeyLength)
	max := big.NewInt(int64(len(secretKeyChars)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate secret key: %w", err)
		}
		out[i] = secretKeyChars[n.Int64()]
	}
	return string(out), nil
}

// URLSafeToken はnバイトの乱数をURLセーフなbase64（パディング無し）で返します。
func URLSafeToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// UpdateEnvFile は.envの既存の値を残したまま、updatesのキーを追加・上書きします。
// ファイルが存在しない場合は新規作成します。
func UpdateEnvFile(path string, updates map[string]string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", path, err)
		}
		values = map[string]string{}
	}
	for k, v := range updates {
		values[k] = v
	}
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
