// Package validate はginのバインディングエラーを英語のフィールドメッセージに変換します。
package validate

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"shop_backend/internal/shared/apperr"
)

// nonFieldKey はフィールドに紐づかないエラーのキーです。
const nonFieldKey = "non_field_errors"

var (
	once       sync.Once
	translator ut.Translator
)

// Init はginのバリデータにJSONタグ名と英語翻訳を登録します。
// 複数回呼ばれても初回のみ実行されます。
func Init() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})

		english := en.New()
		uni := ut.New(english, english)
		translator, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, translator)
	})
}

// Fields はバインディングエラーをフィールド名→メッセージ一覧に変換します。
func Fields(err error) map[string][]string {
	Init()

	out := map[string][]string{}
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			msg := fe.Error()
			if translator != nil {
				msg = fe.Translate(translator)
			}
			out[fe.Field()] = append(out[fe.Field()], msg)
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = nonFieldKey
		}
		out[field] = append(out[field], "A valid "+typeErr.Type.String()+" is required.")
	case errors.Is(err, openapi_types.ErrValidationEmail):
		out["email"] = append(out["email"], "Enter a valid email address.")
	case errors.As(err, &syntaxErr):
		out[nonFieldKey] = append(out[nonFieldKey], "JSON parse error.")
	default:
		out[nonFieldKey] = append(out[nonFieldKey], err.Error())
	}
	return out
}

// BindError はバインディングエラーを400のアプリケーションエラーに変換します。
func BindError(err error) error {
	return apperr.InvalidFields(Fields(err), err)
}
