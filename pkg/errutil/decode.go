package errutil

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by Decode when the payload is not valid JSON.
var ErrInvalidJSON = errors.New("errutil: invalid JSON")

// Decode reads the top-level "errors" array of a GraphQL response. A response
// without errors yields a nil list. Missing path or extensions members are
// tolerated; they simply leave the error unattributable.
func Decode(raw []byte) (Errors, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	return DecodeResult(gjson.GetBytes(raw, "errors")), nil
}

// DecodeResult converts an already selected gjson array into Errors.
func DecodeResult(res gjson.Result) Errors {
	if !res.Exists() || !res.IsArray() {
		return nil
	}
	var out Errors
	res.ForEach(func(_, item gjson.Result) bool {
		out = append(out, decodeOne(item))
		return true
	})
	return out
}

func decodeOne(item gjson.Result) StructuredError {
	if item.Type == gjson.String {
		return StructuredError{Message: item.String()}
	}

	out := StructuredError{}
	if msg := item.Get("message"); msg.Exists() {
		out.Message = msg.String()
	} else {
		out.Message = strings.TrimSpace(item.Raw)
	}

	if path := item.Get("path"); path.IsArray() {
		out.Path = make(Path, 0, len(path.Array()))
		path.ForEach(func(_, seg gjson.Result) bool {
			switch seg.Type {
			case gjson.Number:
				out.Path = append(out.Path, int(seg.Int()))
			case gjson.String:
				out.Path = append(out.Path, seg.String())
			default:
				out.Path = append(out.Path, seg.Raw)
			}
			return true
		})
	}

	code := item.Get("extensions.code")
	fieldID := item.Get("extensions.fieldID")
	if code.Exists() || fieldID.Exists() {
		out.Extensions = &Extensions{
			Code:    Code(code.String()),
			FieldID: fieldID.String(),
		}
	}
	return out
}
