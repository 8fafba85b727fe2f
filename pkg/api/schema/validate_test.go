package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

const validProvisionBody = `{
	"wifi_ssid": "HomeNetwork",
	"wifi_password": "pw",
	"room": "kitchen",
	"command_center_url": "http://cc:8002",
	"household_id": "house-1",
	"node_id": "jarvis-eb123456",
	"provisioning_token": "tok"
}`

func TestValidateBody_ValidProvisionRequest(t *testing.T) {
	v := NewValidator()
	if err := v.ValidateBody(ProvisionRequest, []byte(validProvisionBody)); err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
}

func TestValidateBody_OpenNetworkPassword(t *testing.T) {
	v := NewValidator()
	body := strings.Replace(validProvisionBody, `"wifi_password": "pw"`, `"wifi_password": ""`, 1)
	if err := v.ValidateBody(ProvisionRequest, []byte(body)); err != nil {
		t.Errorf("empty password must be accepted, got: %v", err)
	}
}

func TestValidateBody_MissingField(t *testing.T) {
	v := NewValidator()
	var m map[string]any
	if err := json.Unmarshal([]byte(validProvisionBody), &m); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"wifi_ssid", "wifi_password", "room", "command_center_url", "household_id", "node_id", "provisioning_token"} {
		reduced := make(map[string]any, len(m))
		for k, val := range m {
			if k != field {
				reduced[k] = val
			}
		}
		body, _ := json.Marshal(reduced)
		if err := v.ValidateBody(ProvisionRequest, body); err == nil {
			t.Errorf("expected validation error when %s is missing", field)
		}
	}
}

func TestValidateBody_WrongType(t *testing.T) {
	v := NewValidator()
	body := strings.Replace(validProvisionBody, `"room": "kitchen"`, `"room": 7`, 1)
	if err := v.ValidateBody(ProvisionRequest, []byte(body)); err == nil {
		t.Error("expected validation error for numeric room")
	}
}

func TestValidateBody_BadURL(t *testing.T) {
	v := NewValidator()
	body := strings.Replace(validProvisionBody, `http://cc:8002`, `cc:8002`, 1)
	if err := v.ValidateBody(ProvisionRequest, []byte(body)); err == nil {
		t.Error("expected validation error for URL without scheme")
	}
}

func TestValidateBody_NotJSON(t *testing.T) {
	v := NewValidator()
	if err := v.ValidateBody(ProvisionRequest, []byte(`{"wifi_ssid":`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestValidateBody_K2Request(t *testing.T) {
	v := NewValidator()
	ok := `{"node_id":"n","kid":"k","k2":"AAAA","created_at":"2026-10-16T00:00:00Z"}`
	if err := v.ValidateBody(K2Request, []byte(ok)); err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
	if err := v.ValidateBody(K2Request, []byte(`{"node_id":"n","kid":"k"}`)); err == nil {
		t.Error("expected validation error for missing k2")
	}
}

func TestValidateBody_UnknownSchema(t *testing.T) {
	v := NewValidator()
	if err := v.ValidateBody("nope", []byte(`{}`)); err == nil {
		t.Error("expected error for unknown schema")
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(nil, map[string]any{"anything": true}); err != nil {
		t.Errorf("empty schema should accept anything, got: %v", err)
	}
	if err := v.Validate(json.RawMessage(`{}`), map[string]any{"anything": true}); err != nil {
		t.Errorf("{} schema should accept anything, got: %v", err)
	}
}

func TestValidate_CachesCompiled(t *testing.T) {
	v := NewValidator()
	for i := 0; i < 3; i++ {
		if err := v.ValidateBody(K2Request, []byte(`{"node_id":"n","kid":"k","k2":"x","created_at":""}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if len(v.cache) != 1 {
		t.Errorf("expected 1 cached schema, got %d", len(v.cache))
	}
}
