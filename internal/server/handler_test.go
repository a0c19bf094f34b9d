package server

import (
	"encoding/json"
	"testing"
)

func recvResult(t *testing.T, send chan any) map[string]any {
	t.Helper()
	select {
	case msg := <-send:
		m, ok := msg.(map[string]any)
		if !ok {
			t.Fatalf("message is %T, want map", msg)
		}
		return m
	default:
		t.Fatal("no message sent")
		return nil
	}
}

func TestDecodeAndValidateSuccess(t *testing.T) {
	send := make(chan any, 1)
	cmd := WSCommand{Type: "session/text", Data: json.RawMessage(`{"text":"hello"}`)}

	var req TextRequest
	if !DecodeAndValidate(cmd, send, &req) {
		t.Fatal("DecodeAndValidate failed on valid input")
	}
	if req.Text != "hello" {
		t.Errorf("text = %q, want hello", req.Text)
	}
}

func TestDecodeAndValidateBadJSON(t *testing.T) {
	send := make(chan any, 1)
	cmd := WSCommand{Type: "session/text", Data: json.RawMessage(`{not json`)}

	var req TextRequest
	if DecodeAndValidate(cmd, send, &req) {
		t.Fatal("DecodeAndValidate accepted malformed JSON")
	}

	result := recvResult(t, send)
	if result["success"] != false {
		t.Error("error response should have success=false")
	}
	if result["type"] != "session/text_result" {
		t.Errorf("type = %v, want session/text_result", result["type"])
	}
}

func TestDecodeAndValidateMissingRequired(t *testing.T) {
	send := make(chan any, 1)
	cmd := WSCommand{Type: "archive/test", Data: json.RawMessage(`{"s3_endpoint":"https://s3.example.com"}`)}

	var req ArchiveTestRequest
	if DecodeAndValidate(cmd, send, &req) {
		t.Fatal("DecodeAndValidate accepted a request missing required fields")
	}

	result := recvResult(t, send)
	if result["success"] != false {
		t.Error("validation failure should have success=false")
	}
}

func TestHandleCommandSendsSuccess(t *testing.T) {
	send := make(chan any, 1)
	cmd := WSCommand{Type: "session/text", Data: json.RawMessage(`{"text":"x"}`)}

	called := false
	HandleCommand(cmd, send, func(data *TextRequest) error {
		called = true
		return nil
	})

	if !called {
		t.Fatal("process function was not called")
	}
	result := recvResult(t, send)
	if result["success"] != true {
		t.Error("expected success response")
	}
}

func TestSendErrorCarriesMessage(t *testing.T) {
	send := make(chan any, 1)
	SendError(send, "record/start", errTest)

	result := recvResult(t, send)
	if result["error"] != "test failure" {
		t.Errorf("error = %v, want test failure", result["error"])
	}
}

var errTest = testError("test failure")

type testError string

func (e testError) Error() string { return string(e) }
