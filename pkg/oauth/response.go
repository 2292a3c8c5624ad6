package oauth

import (
	"encoding/json"
	"net/http"
)

// Webflow error codes recognized in failed token responses.
const (
	errCodeUnsupportedGrantType = "unsupported_grant_type"
	errCodeInvalidClient        = "invalid_client"
	errCodeInvalidGrant         = "invalid_grant"
)

// Messages attached to IdentityProviderError.
const (
	MsgInvalidClient      = "No application found matching the provided credentials"
	MsgInvalidGrant       = "Provided 'code' was invalid"
	MsgUnexpectedResponse = "Unexpected response"
)

// CheckResponse classifies an upstream response.
// A 200 status is never an error, whatever the body says.
// Any other status yields ErrUnsupportedGrantType or an *IdentityProviderError.
//
// User and revoke requests go through CheckResponse directly. The token exchange
// is decoded by golang.org/x/oauth2, which accepts any 2xx status; only non-2xx
// token responses reach this classification.
func CheckResponse(statusCode int, body []byte) error {
	if statusCode == http.StatusOK {
		return nil
	}

	var data map[string]any
	// Non-JSON bodies fall through to the generic message.
	_ = json.Unmarshal(body, &data)

	switch {
	case hasErrorCode(data, errCodeUnsupportedGrantType):
		return ErrUnsupportedGrantType
	case hasErrorCode(data, errCodeInvalidClient):
		return newIdentityProviderError(MsgInvalidClient, statusCode, body)
	case hasErrorCode(data, errCodeInvalidGrant):
		return newIdentityProviderError(MsgInvalidGrant, statusCode, body)
	default:
		return newIdentityProviderError(MsgUnexpectedResponse, statusCode, body)
	}
}

func newIdentityProviderError(msg string, statusCode int, body []byte) *IdentityProviderError {
	return &IdentityProviderError{
		Message:    msg,
		StatusCode: statusCode,
		Body:       string(body),
	}
}

// hasErrorCode matches either a top-level key named code or an "error" field equal to code.
func hasErrorCode(data map[string]any, code string) bool {
	if data == nil {
		return false
	}
	if v, ok := data[code]; ok && v != nil {
		return true
	}
	if v, ok := data["error"].(string); ok && v == code {
		return true
	}
	return false
}

// truthy mirrors loose boolean coercion of decoded JSON values.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}
