package extract

import "github.com/tidwall/gjson"

// VendorError reports whether body carries an "error" field and the message
// to surface for it.
func VendorError(body gjson.Result) (string, bool) {
	field := body.Get("error")
	if !field.Exists() || field.Type == gjson.Null {
		return "", false
	}

	switch {
	case field.IsObject():
		if msg := field.Get("message"); msg.Type == gjson.String && msg.String() != "" {
			return msg.String(), true
		}
	case field.Type == gjson.String && field.String() != "":
		return field.String(), true
	}
	return "", true
}
