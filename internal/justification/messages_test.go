package justification

import "testing"

func TestKindFromStatus(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorKind
	}{
		{403, KindForbidden},
		{400, KindBadRequest},
		{500, KindServerError},
		{503, KindServerError},
		{404, KindUnknown},
		{418, KindUnknown},
	}
	for _, c := range cases {
		if got := kindFromStatus(c.status); got != c.want {
			t.Errorf("status %d: expected kind %d, got %d", c.status, c.want, got)
		}
	}
}

func TestSubmitErrorForbiddenIgnoresBody(t *testing.T) {
	err := newSubmitError(403, "403 Forbidden", map[string]any{"message": "whatever the backend says"})
	if err.Message != msgAccessDenied {
		t.Errorf("403 must use the localized access-denied text, got %q", err.Message)
	}
	if err.Backend != "whatever the backend says" {
		t.Errorf("backend text must still be kept for diagnostics, got %q", err.Backend)
	}
}

func TestSubmitErrorBadRequestPassesBackendMessage(t *testing.T) {
	err := newSubmitError(400, "400 Bad Request", map[string]any{"message": "absence déjà justifiée"})
	if err.Message != "absence déjà justifiée" {
		t.Errorf("400 should pass the backend message through, got %q", err.Message)
	}

	err = newSubmitError(400, "400 Bad Request", nil)
	if err.Message != msgInvalidData {
		t.Errorf("400 without backend message should use the generic text, got %q", err.Message)
	}
}

func TestSubmitErrorServerError(t *testing.T) {
	err := newSubmitError(500, "500 Internal Server Error", map[string]any{"message": "stack trace"})
	if err.Message != msgServerError {
		t.Errorf("500 must use the generic internal-error text, got %q", err.Message)
	}
}

func TestSubmitErrorUnknownFallsBack(t *testing.T) {
	err := newSubmitError(418, "418 I'm a teapot", map[string]any{"error": "teapot"})
	if err.Message != "teapot" {
		t.Errorf("unknown status should use backend error text, got %q", err.Message)
	}

	err = newSubmitError(418, "418 I'm a teapot", nil)
	if err.Message != "418 I'm a teapot" {
		t.Errorf("unknown status without body should use the status line, got %q", err.Message)
	}
}
