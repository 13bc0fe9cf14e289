package extract

import "github.com/tidwall/gjson"

// Probe recognises one response layout and pulls the text out of it.
type Probe struct {
	Name    string
	Match   func(body gjson.Result) bool
	Extract func(body gjson.Result) string
}

// ChoicesProbe matches the chat-completions layout: choices[0].message.content.
var ChoicesProbe = Probe{
	Name: "choices",
	Match: func(body gjson.Result) bool {
		return present(body.Get("choices.0.message.content"))
	},
	Extract: func(body gjson.Result) string {
		return body.Get("choices.0.message.content").String()
	},
}

// ContentProbe matches a direct "content" field holding either a string or
// an array whose first element has a "text" field.
var ContentProbe = Probe{
	Name: "content",
	Match: func(body gjson.Result) bool {
		content := body.Get("content")
		if content.Type == gjson.String {
			return true
		}
		return content.IsArray() && present(content.Get("0.text"))
	},
	Extract: func(body gjson.Result) string {
		content := body.Get("content")
		if content.Type == gjson.String {
			return content.String()
		}
		return content.Get("0.text").String()
	},
}

// ResponseProbe matches a bare "response" field.
var ResponseProbe = Probe{
	Name: "response",
	Match: func(body gjson.Result) bool {
		return present(body.Get("response"))
	},
	Extract: func(body gjson.Result) string {
		return body.Get("response").String()
	},
}

// FirstMatch evaluates probes in order and returns the text from the first
// one that matches.
func FirstMatch(body gjson.Result, probes []Probe) (text string, name string, ok bool) {
	for _, p := range probes {
		if p.Match(body) {
			return p.Extract(body), p.Name, true
		}
	}
	return "", "", false
}

// present treats an explicit JSON null the same as a missing field.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}
