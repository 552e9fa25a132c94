package model

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Mapping 一条 TG 频道 -> QQ 频道的转发规则
type Mapping struct {
	ID        int64  `json:"id"`
	TGChannel string `json:"tg_channel"`
	QQChannel string `json:"qq_channel"`
	Remark    string `json:"remark"`
	GrayRatio int    `json:"gray_ratio"` // 0 - 100
	Enabled   bool   `json:"enabled"`
}

// MappingPatch 部分字段的 Mapping，nil 字段不会出现在请求体中
type MappingPatch struct {
	TGChannel *string `json:"tg_channel,omitempty" validate:"omitempty,notblank"`
	QQChannel *string `json:"qq_channel,omitempty" validate:"omitempty,notblank"`
	Remark    *string `json:"remark,omitempty"`
	GrayRatio *int    `json:"gray_ratio,omitempty" validate:"omitempty,min=0,max=100"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

// Empty reports whether no field is set.
func (p MappingPatch) Empty() bool {
	return p.TGChannel == nil && p.QQChannel == nil && p.Remark == nil && p.GrayRatio == nil && p.Enabled == nil
}

// Validate checks the fields that are set.
func (p MappingPatch) Validate() error {
	if err := validate().Struct(p); err != nil {
		return newValidationError(err)
	}
	return nil
}

// ValidateCreate additionally requires both channels.
func (p MappingPatch) ValidateCreate() error {
	var missing []FieldError
	if p.TGChannel == nil {
		missing = append(missing, FieldError{Field: "tg_channel", Rule: "required"})
	}
	if p.QQChannel == nil {
		missing = append(missing, FieldError{Field: "qq_channel", Rule: "required"})
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return p.Validate()
}

// FieldError 单个字段的校验失败
type FieldError struct {
	Field string
	Rule  string
	Param string
}

// ValidationError 请求构造阶段的字段校验错误，请求不会发出
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", f.Field, f.Rule, f.Param))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Rule))
	}
	return "invalid mapping: " + strings.Join(parts, ", ")
}

func newValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

var (
	validateOnce sync.Once
	validateInst *validator.Validate
)

func validate() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// 错误信息里使用 json 字段名
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validateInst = v
	})
	return validateInst
}

// String, Int and Bool build MappingPatch fields inline.
func String(v string) *string { return &v }
func Int(v int) *int { return &v }
func Bool(v bool) *bool { return &v }
