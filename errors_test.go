package tether

import (
	"errors"
	"strings"
	"testing"
)

func TestFieldError(t *testing.T) {
	err := newFieldError(ErrReadOnlyField, "User", "role_name", nil)

	if !errors.Is(err, ErrReadOnlyField) {
		t.Error("FieldError should unwrap to its sentinel")
	}
	if got, want := err.Error(), "read-only field: User.role_name"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "role_name" {
		t.Errorf("errors.As() = %+v", fe)
	}
}

func TestFieldError_WithCause(t *testing.T) {
	err := newFieldError(ErrInvalidValue, "User", "id", errors.New("1.5 is not an integer"))
	if !strings.HasSuffix(err.Error(), ": 1.5 is not an integer") {
		t.Errorf("Error() = %q, want cause suffix", err.Error())
	}
}

func TestRouteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
		is   error
	}{
		{
			name: "unknown operation",
			err:  newRouteError(ErrUnknownOperation, "delete", ""),
			want: `unknown operation "delete"`,
			is:   ErrUnknownOperation,
		},
		{
			name: "unresolved param",
			err:  newRouteError(ErrUnresolvedParam, "update", "id"),
			want: `unresolved url parameter "id" for operation "update"`,
			is:   ErrUnresolvedParam,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
			if !errors.Is(tt.err, tt.is) {
				t.Errorf("errors.Is(%v) = false", tt.is)
			}
		})
	}
}

func TestSchemaError(t *testing.T) {
	err := &SchemaError{Type: "User", Field: "Role", Reason: "missing key"}
	if !errors.Is(err, ErrInvalidSchema) {
		t.Error("SchemaError should unwrap to ErrInvalidSchema")
	}
	if got, want := err.Error(), "invalid schema: User.Role: missing key"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTransportError(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		err := &TransportError{Method: "get", URL: "/api/users/1", Status: 404, Body: []byte("missing")}
		if !errors.Is(err, ErrTransport) {
			t.Error("TransportError should match ErrTransport")
		}
		if got, want := err.Error(), "transport failed get /api/users/1: status 404"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("cause", func(t *testing.T) {
		cause := NewCodecError(ErrUnmarshal, errors.New("bad json"))
		err := &TransportError{Method: "post", URL: "/api/users", Cause: cause}
		if !errors.Is(err, ErrTransport) || !errors.Is(err, ErrUnmarshal) {
			t.Error("TransportError should match both ErrTransport and its cause")
		}
		var ce *CodecError
		if !errors.As(err, &ce) {
			t.Error("errors.As should reach the CodecError")
		}
	})
}

func TestCodecError(t *testing.T) {
	err := NewCodecError(ErrMarshal, errors.New("unsupported type"))
	if !errors.Is(err, ErrMarshal) {
		t.Error("CodecError should unwrap to its sentinel")
	}
	if got, want := err.Error(), "marshal failed: unsupported type"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
