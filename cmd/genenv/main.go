// genenv は開発用の.envを生成します。
// 署名鍵とOAuth2のclient_idは毎回ランダムに生成されます。
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"

	"shop_backend/internal/platform/config"
)

type options struct {
	Output  string `conf:"default:.env,short:o,help:path of the generated file"`
	Force   bool   `conf:"default:false,short:f,help:overwrite without asking"`
	Project string `conf:"default:shop_backend"`
}

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return
		}
		slog.Error("genenv failed", "error", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	var opts options
	help, err := conf.Parse(config.Prefix, &opts)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Fprintln(out, help)
		}
		return err
	}

	if _, err := os.Stat(opts.Output); err == nil && !opts.Force {
		if !confirm(in, out, fmt.Sprintf("%s already exists. Overwrite? [y/N] ", opts.Output)) {
			fmt.Fprintln(out, "aborted")
			return nil
		}
	}

	values, err := defaults(opts.Project)
	if err != nil {
		return err
	}
	if err := godotenv.Write(values, opts.Output); err != nil {
		return fmt.Errorf("write %s: %w", opts.Output, err)
	}
	fmt.Fprintf(out, "wrote %s (client id %s)\n", opts.Output, values["SHOP_OAUTH_CLIENT_ID"])
	return nil
}

// defaults は生成する.envの内容です。
func defaults(project string) (map[string]string, error) {
	secret, err := config.GenerateSecretKey()
	if err != nil {
		return nil, err
	}
	suffix, err := config.URLSafeToken(16)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"SHOP_DEBUG":             "true",
		"SHOP_PROJECT":           project,
		"SHOP_SECRET_KEY":        secret,
		"SHOP_OAUTH_CLIENT_ID":   project + "-" + suffix,
		"SHOP_LOG_LEVEL":         "debug",
		"SHOP_LOG_FORMAT":        "text",
		"SHOP_DB_ENGINE":         "sqlite",
		"SHOP_DB_NAME":           "shop.db",
		"SHOP_DB_RUN_MIGRATIONS": "true",
		"SHOP_WEB_CORS_ORIGINS":  "http://localhost:3000",
	}, nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
