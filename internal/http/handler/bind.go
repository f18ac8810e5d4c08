package handler

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// flexBool accepts true/false as a JSON bool, a JSON string or a form value.
// Accepted truthy strings: "true", "1", "on", "yes". Falsy: "false", "0", "off", "no", "".
type flexBool bool

func parseFlexBool(s string) (flexBool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on", "yes":
		return true, true
	case "false", "0", "off", "no", "":
		return false, true
	}
	return false, false
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := parseFlexBool(s)
	if !ok {
		return &json.UnmarshalTypeError{Value: "string " + s, Type: reflect.TypeOf(*b)}
	}
	*b = parsed
	return nil
}

// boolOr returns the value of b, or def when the field was absent.
func boolOr(b *flexBool, def bool) bool {
	if b == nil {
		return def
	}
	return bool(*b)
}

var registerDecoders sync.Once

// bind parses JSON, urlencoded and multipart bodies into out. It is the single
// place transport input is normalized before reaching a service.
func bind(c *fiber.Ctx, out any) error {
	registerDecoders.Do(func() {
		fiber.SetParserDecoder(fiber.ParserConfig{
			IgnoreUnknownKeys: true,
			ZeroEmpty:         true,
			ParserType: []fiber.ParserType{{
				Customtype: flexBool(false),
				Converter: func(s string) reflect.Value {
					if v, ok := parseFlexBool(s); ok {
						return reflect.ValueOf(v)
					}
					return reflect.Value{}
				},
			}},
		})
	})

	// An empty body binds to the zero value.
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return err
	}
	return nil
}
