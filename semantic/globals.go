// Copyright © 2024 The ELPS authors

package semantic

import (
	"fmt"
	"sort"
)

// Environment names a predefined set of global variables.
type Environment string

const (
	EnvBuiltin  Environment = "builtin"  // ECMAScript globals, always enabled
	EnvBrowser  Environment = "browser"  // window and DOM globals
	EnvNode     Environment = "node"     // Node.js globals
	EnvCommonJS Environment = "commonjs" // require, module, exports
	EnvWorker   Environment = "worker"   // web worker globals
)

// builtinGlobals are the ECMAScript standard globals. The bool is true for
// globals a program may assign.
var builtinGlobals = map[string]bool{
	"AggregateError": false, "Array": false, "ArrayBuffer": false, "Atomics": false,
	"BigInt": false, "BigInt64Array": false, "BigUint64Array": false, "Boolean": false,
	"DataView": false, "Date": false, "Error": false, "EvalError": false,
	"FinalizationRegistry": false, "Float32Array": false, "Float64Array": false,
	"Function": false, "Infinity": false, "Int16Array": false, "Int32Array": false,
	"Int8Array": false, "Intl": false, "JSON": false, "Map": false, "Math": false,
	"NaN": false, "Number": false, "Object": false, "Promise": false, "Proxy": false,
	"RangeError": false, "ReferenceError": false, "Reflect": false, "RegExp": false,
	"Set": false, "SharedArrayBuffer": false, "String": false, "Symbol": false,
	"SyntaxError": false, "TypeError": false, "URIError": false, "Uint16Array": false,
	"Uint32Array": false, "Uint8Array": false, "Uint8ClampedArray": false,
	"WeakMap": false, "WeakRef": false, "WeakSet": false, "decodeURI": false,
	"decodeURIComponent": false, "encodeURI": false, "encodeURIComponent": false,
	"escape": false, "eval": false, "globalThis": false, "isFinite": false,
	"isNaN": false, "parseFloat": false, "parseInt": false, "undefined": false,
	"unescape": false,
}

var browserGlobals = map[string]bool{
	"AbortController": false, "Blob": false, "CustomEvent": false, "DOMParser": false,
	"Event": false, "EventTarget": false, "FormData": false, "Headers": false,
	"HTMLElement": false, "Image": false, "IntersectionObserver": false,
	"MutationObserver": false, "Node": false, "Request": false, "Response": false,
	"TextDecoder": false, "TextEncoder": false, "URL": false, "URLSearchParams": false,
	"WebSocket": false, "Worker": false, "XMLHttpRequest": false, "alert": false,
	"atob": false, "btoa": false, "cancelAnimationFrame": false, "clearInterval": false,
	"clearTimeout": false, "confirm": false, "console": false, "crypto": false,
	"customElements": false, "document": false, "fetch": false, "history": false,
	"localStorage": false, "location": true, "navigator": false, "onload": true,
	"performance": false, "queueMicrotask": false, "requestAnimationFrame": false,
	"self": false, "sessionStorage": false, "setInterval": false, "setTimeout": false,
	"structuredClone": false, "window": false,
}

var nodeGlobals = map[string]bool{
	"AbortController": false, "Buffer": false, "TextDecoder": false, "TextEncoder": false,
	"URL": false, "URLSearchParams": false, "__dirname": false, "__filename": false,
	"clearImmediate": false, "clearInterval": false, "clearTimeout": false,
	"console": false, "exports": true, "fetch": false, "global": false,
	"module": false, "process": false, "queueMicrotask": false, "require": false,
	"setImmediate": false, "setInterval": false, "setTimeout": false,
	"structuredClone": false,
}

var commonjsGlobals = map[string]bool{
	"exports": true, "module": false, "require": false,
}

var workerGlobals = map[string]bool{
	"close": false, "fetch": false, "importScripts": false, "onmessage": true,
	"postMessage": false, "self": false,
}

var environments = map[Environment]map[string]bool{
	EnvBuiltin:  builtinGlobals,
	EnvBrowser:  browserGlobals,
	EnvNode:     nodeGlobals,
	EnvCommonJS: commonjsGlobals,
	EnvWorker:   workerGlobals,
}

// Environments returns the known environment names, sorted.
func Environments() []Environment {
	envs := make([]Environment, 0, len(environments))
	for env := range environments {
		envs = append(envs, env)
	}
	sort.Slice(envs, func(i, j int) bool { return envs[i] < envs[j] })
	return envs
}

// Globals returns the global names defined by the builtin environment plus
// envs, mapped to whether they are writable.
func Globals(envs ...Environment) (map[string]bool, error) {
	out := make(map[string]bool, len(builtinGlobals))
	for name, w := range builtinGlobals {
		out[name] = w
	}
	for _, env := range envs {
		set, ok := environments[env]
		if !ok {
			return nil, fmt.Errorf("unknown environment %q", env)
		}
		for name, w := range set {
			out[name] = out[name] || w
		}
	}
	return out, nil
}
