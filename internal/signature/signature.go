// Package signature implements the gateway request signature: HMAC-SHA-256
// over the parameters sorted by key and concatenated as key1value1key2value2.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Field is the parameter name carrying the signature itself.
const Field = "s"

func Sign(params map[string]any, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(Canonical(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature without the signature field and compares
// in constant time.
func Verify(params map[string]any, signature, secret string) bool {
	if signature == "" {
		return false
	}
	unsigned := make(map[string]any, len(params))
	for k, v := range params {
		if k == Field {
			continue
		}
		unsigned[k] = v
	}
	expected := Sign(unsigned, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Canonical returns the string that gets signed.
func Canonical(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(Format(params[k]))
	}
	return b.String()
}

// Format converts a parameter value to its signed form. Integers are plain
// decimal, floats use the shortest representation without exponent.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Values flattens a form into signable params, keeping the first value per key.
func Values(form url.Values) map[string]any {
	out := make(map[string]any, len(form))
	for k, vs := range form {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// Form encodes params plus their signature as a form body.
func Form(params map[string]any, secret string) url.Values {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, Format(v))
	}
	form.Set(Field, Sign(params, secret))
	return form
}
