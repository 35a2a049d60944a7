// Copyright © 2024 The ELPS authors

package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/jsscope/jstest"
)

// jsonRPCRequest builds a JSON-RPC 2.0 request.
func jsonRPCRequest(id int, method string, params any) []byte {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	}
	b, _ := json.Marshal(msg)
	return b
}

// jsonRPCNotification builds a JSON-RPC 2.0 notification (no id).
func jsonRPCNotification(method string, params any) []byte {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	b, _ := json.Marshal(msg)
	return b
}

// lspMessage wraps JSON content with the LSP Content-Length header.
func lspMessage(content []byte) []byte {
	return fmt.Appendf(nil, "Content-Length: %d\r\n\r\n%s", len(content), content)
}

// readLSPMessage reads a single LSP message from a buffered reader.
// Returns the parsed JSON as a map.
func readLSPMessage(t *testing.T, r *bufio.Reader) map[string]any {
	t.Helper()

	// Read headers until blank line.
	var contentLength int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("failed to read LSP header: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if val, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			n, err := strconv.Atoi(val)
			require.NoError(t, err, "parsing Content-Length")
			contentLength = n
		}
	}
	require.Greater(t, contentLength, 0, "Content-Length must be positive")

	// Read content body.
	body := make([]byte, contentLength)
	_, err := io.ReadFull(r, body)
	require.NoError(t, err, "reading message body")

	var msg map[string]any
	require.NoError(t, json.Unmarshal(body, &msg), "parsing JSON body")
	return msg
}

// readResponse reads LSP messages until a response with the given id appears.
// Returns the response and any notifications received along the way.
func readResponse(t *testing.T, r *bufio.Reader, id int) (map[string]any, []map[string]any) {
	t.Helper()
	var notifications []map[string]any
	deadline := time.After(10 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting for response id=%d", id)
		default:
		}
		msg := readLSPMessage(t, r)
		// If this message has the expected id, it's our response.
		if msgID, ok := msg["id"]; ok {
			var msgIDFloat float64
			switch v := msgID.(type) {
			case float64:
				msgIDFloat = v
			case json.Number:
				f, _ := v.Float64()
				msgIDFloat = f
			}
			if int(msgIDFloat) == id {
				return msg, notifications
			}
		}
		// Otherwise it's a notification (no id, or different id).
		notifications = append(notifications, msg)
	}
}

// e2eServer starts an LSP server on a random TCP port and returns the
// connection and a cleanup function.
func e2eServer(t *testing.T) (net.Conn, func()) {
	t.Helper()

	srv := New(WithLogger(jstest.NewLogrus(t)))
	srv.exitFn = func(int) {}

	// Find a free port.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	_ = listener.Close()

	go func() {
		_ = srv.RunTCP(addr)
	}()

	// Give server a moment to start listening, then connect.
	var conn net.Conn
	for range 50 {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err, "failed to connect to LSP server at %s", addr)

	cleanup := func() {
		_ = conn.Close()
	}
	return conn, cleanup
}

// send writes an LSP message to the connection.
func send(t *testing.T, conn net.Conn, data []byte) {
	t.Helper()
	_, err := conn.Write(lspMessage(data))
	require.NoError(t, err, "writing LSP message")
}


// initializeSession performs the initialize handshake.
func initializeSession(t *testing.T, conn net.Conn, reader *bufio.Reader) map[string]any {
	t.Helper()
	send(t, conn, jsonRPCRequest(1, "initialize", map[string]any{
		"capabilities": map[string]any{},
	}))
	resp, _ := readResponse(t, reader, 1)
	send(t, conn, jsonRPCNotification("initialized", map[string]any{}))
	result, _ := resp["result"].(map[string]any)
	return result
}

// openDocument sends didOpen for a JavaScript document.
func openDocument(t *testing.T, conn net.Conn, uri, text string) {
	t.Helper()
	send(t, conn, jsonRPCNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": "javascript",
			"version":    1,
			"text":       text,
		},
	}))
}

// waitDiagnostics reads messages until diagnostics for uri are published.
func waitDiagnostics(t *testing.T, reader *bufio.Reader, uri string) []any {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for diagnostics notification")
		default:
		}
		msg := readLSPMessage(t, reader)
		if method, _ := msg["method"].(string); method != "textDocument/publishDiagnostics" {
			continue
		}
		params := msg["params"].(map[string]any)
		if params["uri"] != uri {
			continue
		}
		diags, _ := params["diagnostics"].([]any)
		return diags
	}
}

func shutdownSession(t *testing.T, conn net.Conn, reader *bufio.Reader) {
	t.Helper()
	send(t, conn, jsonRPCRequest(99, "shutdown", nil))
	resp, _ := readResponse(t, reader, 99)
	assert.Nil(t, resp["error"], "shutdown should not error")
	send(t, conn, jsonRPCNotification("exit", nil))
}

func textDocumentPosition(uri string, line, char int) map[string]any {
	return map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     map[string]any{"line": line, "character": char},
	}
}

func TestE2E_FullLifecycle(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()
	reader := bufio.NewReader(conn)

	testURI := "file:///tmp/e2e-test/test.js"
	testContent := `function add(a, b) {
  return a + b;
}

function multiply(x, y) {
  return x * y;
}

const result = add(1, 2);
multiply(result, 3);
`

	result := initializeSession(t, conn, reader)
	require.NotNil(t, result)
	caps := result["capabilities"].(map[string]any)
	for _, c := range []string{
		"hoverProvider", "definitionProvider", "completionProvider",
		"referencesProvider", "documentSymbolProvider", "renameProvider",
		"documentFormattingProvider", "foldingRangeProvider",
		"codeActionProvider", "semanticTokensProvider", "workspaceSymbolProvider",
	} {
		assert.NotNil(t, caps[c], "missing capability %s", c)
	}
	serverInfo := result["serverInfo"].(map[string]any)
	assert.Equal(t, "jsscope-lsp", serverInfo["name"])

	openDocument(t, conn, testURI, testContent)
	assert.Empty(t, waitDiagnostics(t, reader, testURI), "clean program")

	// Hover on the declaration of add.
	send(t, conn, jsonRPCRequest(2, "textDocument/hover", textDocumentPosition(testURI, 0, 10)))
	hoverResp, _ := readResponse(t, reader, 2)
	require.NotNil(t, hoverResp["result"], "hover should return a result")
	hoverValue := hoverResp["result"].(map[string]any)["contents"].(map[string]any)["value"].(string)
	assert.Contains(t, hoverValue, "**function** `add`")
	assert.Contains(t, hoverValue, "1 read")

	// Definition of the call to add.
	send(t, conn, jsonRPCRequest(3, "textDocument/definition", textDocumentPosition(testURI, 8, 16)))
	defResp, _ := readResponse(t, reader, 3)
	require.NotNil(t, defResp["result"], "definition should return a result")
	defStart := defResp["result"].(map[string]any)["range"].(map[string]any)["start"].(map[string]any)
	assert.Equal(t, float64(0), defStart["line"])
	assert.Equal(t, float64(9), defStart["character"])

	send(t, conn, jsonRPCRequest(4, "textDocument/documentSymbol", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
	}))
	symResp, _ := readResponse(t, reader, 4)
	var symNames []string
	for _, s := range symResp["result"].([]any) {
		symNames = append(symNames, s.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"add", "multiply", "result"}, symNames)

	// Completion after "ad".
	send(t, conn, jsonRPCRequest(5, "textDocument/completion", textDocumentPosition(testURI, 8, 17)))
	compResp, _ := readResponse(t, reader, 5)
	require.NotNil(t, compResp["result"], "completion should return a result")
	var compLabels []string
	for _, item := range compResp["result"].([]any) {
		compLabels = append(compLabels, item.(map[string]any)["label"].(string))
	}
	assert.Contains(t, compLabels, "add")
	assert.NotContains(t, compLabels, "multiply")

	send(t, conn, jsonRPCRequest(6, "textDocument/references", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 0, "character": 10},
		"context":      map[string]any{"includeDeclaration": true},
	}))
	refsResp, _ := readResponse(t, reader, 6)
	assert.Len(t, refsResp["result"].([]any), 2, "declaration and call site")

	send(t, conn, jsonRPCRequest(7, "textDocument/prepareRename", textDocumentPosition(testURI, 0, 10)))
	prepResp, _ := readResponse(t, reader, 7)
	require.NotNil(t, prepResp["result"], "prepare rename should succeed for a declared function")
	assert.Equal(t, "add", prepResp["result"].(map[string]any)["placeholder"])

	renameParams := textDocumentPosition(testURI, 0, 10)
	renameParams["newName"] = "sum"
	send(t, conn, jsonRPCRequest(8, "textDocument/rename", renameParams))
	renameResp, _ := readResponse(t, reader, 8)
	require.NotNil(t, renameResp["result"], "rename should return a workspace edit")
	changes := renameResp["result"].(map[string]any)["changes"].(map[string]any)
	fileEdits := changes[testURI].([]any)
	assert.Len(t, fileEdits, 2)
	for _, edit := range fileEdits {
		assert.Equal(t, "sum", edit.(map[string]any)["newText"])
	}

	// Introduce a syntax error.
	send(t, conn, jsonRPCNotification("textDocument/didChange", map[string]any{
		"textDocument": map[string]any{"uri": testURI, "version": 2},
		"contentChanges": []any{
			map[string]any{"text": "function broken(x {\n"},
		},
	}))
	diags := waitDiagnostics(t, reader, testURI)
	require.Len(t, diags, 1)
	assert.Equal(t, "jsscope", diags[0].(map[string]any)["source"])

	// Hover on a builtin global.
	send(t, conn, jsonRPCNotification("textDocument/didChange", map[string]any{
		"textDocument": map[string]any{"uri": testURI, "version": 3},
		"contentChanges": []any{
			map[string]any{"text": "Math.max(1, 2);\n"},
		},
	}))
	assert.Empty(t, waitDiagnostics(t, reader, testURI))

	send(t, conn, jsonRPCRequest(9, "textDocument/hover", textDocumentPosition(testURI, 0, 1)))
	builtinResp, _ := readResponse(t, reader, 9)
	require.NotNil(t, builtinResp["result"], "hover on builtin should return a result")
	builtinValue := builtinResp["result"].(map[string]any)["contents"].(map[string]any)["value"].(string)
	assert.Contains(t, builtinValue, "**global** `Math`")
	assert.Contains(t, builtinValue, "readonly")

	send(t, conn, jsonRPCNotification("textDocument/didClose", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
	}))
	assert.Empty(t, waitDiagnostics(t, reader, testURI), "close clears diagnostics")

	shutdownSession(t, conn, reader)
}

func TestE2E_DiagnosticsPublishedOnOpen(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()
	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-diag/test.js"

	initializeSession(t, conn, reader)
	openDocument(t, conn, testURI, "function broken(x {")

	diags := waitDiagnostics(t, reader, testURI)
	require.NotEmpty(t, diags, "parse error should produce diagnostics")
	diag := diags[0].(map[string]any)
	assert.Equal(t, float64(1), diag["severity"], "syntax errors are errors")

	shutdownSession(t, conn, reader)
}

func TestE2E_LintDiagnostics(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()
	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-lint/test.js"

	initializeSession(t, conn, reader)
	openDocument(t, conn, testURI, "missing();\n")

	diags := waitDiagnostics(t, reader, testURI)
	require.Len(t, diags, 1)
	diag := diags[0].(map[string]any)
	assert.Equal(t, "jsscope-lint", diag["source"])
	assert.Equal(t, "no-undef", diag["code"])
	assert.Equal(t, "'missing' is not defined", diag["message"])

	// The quick fix declares the global.
	send(t, conn, jsonRPCRequest(2, "textDocument/codeAction", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"range":        diag["range"],
		"context":      map[string]any{"diagnostics": []any{diag}},
	}))
	resp, _ := readResponse(t, reader, 2)
	var titles []string
	for _, a := range resp["result"].([]any) {
		titles = append(titles, a.(map[string]any)["title"].(string))
	}
	assert.Contains(t, titles, "Declare 'missing' as a global")

	shutdownSession(t, conn, reader)
}

func TestE2E_HoverOnWhitespace(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()
	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-hover/test.js"

	initializeSession(t, conn, reader)
	openDocument(t, conn, testURI, "let a = 1;\n\nlet b = a;\n")
	waitDiagnostics(t, reader, testURI)

	send(t, conn, jsonRPCRequest(2, "textDocument/hover", textDocumentPosition(testURI, 1, 0)))
	resp, _ := readResponse(t, reader, 2)
	assert.Nil(t, resp["result"], "hover on whitespace should return null")

	shutdownSession(t, conn, reader)
}

func TestE2E_DefinitionOnUndefinedSymbol(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()
	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-undef/test.js"

	initializeSession(t, conn, reader)
	openDocument(t, conn, testURI, "nonexistent(1, 2, 3);\n")
	waitDiagnostics(t, reader, testURI)

	send(t, conn, jsonRPCRequest(2, "textDocument/definition", textDocumentPosition(testURI, 0, 1)))
	resp, _ := readResponse(t, reader, 2)
	assert.Nil(t, resp["error"], "definition on an undefined name should not error")
	assert.Nil(t, resp["result"])

	// Renaming a name nothing declares is refused.
	params := textDocumentPosition(testURI, 0, 1)
	params["newName"] = "other"
	send(t, conn, jsonRPCRequest(3, "textDocument/rename", params))
	resp, _ = readResponse(t, reader, 3)
	require.NotNil(t, resp["error"])
	assert.Contains(t, resp["error"].(map[string]any)["message"], "cannot rename undeclared global")

	shutdownSession(t, conn, reader)
}

func TestE2E_EmptyDocument(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()
	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-empty/test.js"

	initializeSession(t, conn, reader)
	openDocument(t, conn, testURI, "")
	assert.Empty(t, waitDiagnostics(t, reader, testURI))

	send(t, conn, jsonRPCRequest(2, "textDocument/hover", textDocumentPosition(testURI, 0, 0)))
	hoverResp, _ := readResponse(t, reader, 2)
	assert.Nil(t, hoverResp["result"], "hover on empty doc should return null")

	send(t, conn, jsonRPCRequest(3, "textDocument/documentSymbol", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
	}))
	symResp, _ := readResponse(t, reader, 3)
	assert.Nil(t, symResp["error"])
	assert.Empty(t, symResp["result"])

	shutdownSession(t, conn, reader)
}

func TestE2E_Formatting(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()
	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-fmt/test.js"

	initializeSession(t, conn, reader)
	openDocument(t, conn, testURI, "function f() {\nreturn 1;\n}\n")
	waitDiagnostics(t, reader, testURI)

	send(t, conn, jsonRPCRequest(2, "textDocument/formatting", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"options":      map[string]any{"tabSize": 2, "insertSpaces": true},
	}))
	resp, _ := readResponse(t, reader, 2)
	edits := resp["result"].([]any)
	require.Len(t, edits, 1)
	assert.Equal(t, "function f() {\n  return 1;\n}\n", edits[0].(map[string]any)["newText"])

	shutdownSession(t, conn, reader)
}
