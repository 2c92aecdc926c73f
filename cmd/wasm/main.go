//go:build js && wasm

package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"docgen/internal/adapter/doccomment"
	"docgen/internal/adapter/response"
	"docgen/internal/domain"
)

var normalizer = response.NewNormalizer()

// Exposes the response pipeline to the browser so raw model output can be
// inspected without a local install. Method discovery is not included.
func main() {
	c := make(chan struct{})

	js.Global().Set("docgenNormalize", js.FuncOf(normalize))
	js.Global().Set("docgenMerge", js.FuncOf(merge))
	js.Global().Set("docgenRepair", js.FuncOf(repair))

	<-c
}

// normalize(raw, [lang], [streamed], [start], [end])
func normalize(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: docgenNormalize(raw, [lang], [streamed], [start], [end])")
	}

	raw := domain.Single(args[0].String())
	lang := "java"
	if len(args) > 1 && args[1].String() != "" {
		lang = args[1].String()
	}
	if len(args) > 2 && args[2].Bool() {
		raw = domain.Streamed(strings.Split(args[0].String(), "\n"))
	}

	normalized := normalizer.Normalize(raw, lang)
	extraction := doccomment.NewExtractor(delimitersFrom(args, 3)).Extract(normalized.Text)

	return makeResult(map[string]interface{}{
		"text":    normalized.Text,
		"lang":    normalized.Lang,
		"comment": extraction.Comment,
		"kind":    extraction.Kind.String(),
	})
}

// merge(comment, method)
func merge(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: docgenMerge(comment, method)")
	}
	return makeResult(map[string]interface{}{
		"text": doccomment.Merge(args[0].String(), args[1].String()),
	})
}

// repair(content, [start], [end])
func repair(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: docgenRepair(content, [start], [end])")
	}
	text, n := doccomment.NewExtractor(delimitersFrom(args, 1)).Repair(args[0].String())
	return makeResult(map[string]interface{}{
		"text":     text,
		"repaired": n,
	})
}

func delimitersFrom(args []js.Value, at int) domain.Delimiters {
	if len(args) < at+2 {
		return domain.Delimiters{}
	}
	return domain.Delimiters{Start: args[at].String(), End: args[at+1].String()}
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
