package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	f, err := NewFrame(EventSendMessage, Envelope{ID: "m1", From: "ada", To: "lin", Content: "hi"})
	require.NoError(t, err)

	raw, err := f.Encode()
	require.NoError(t, err)

	decoded, err := DecodeFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, EventSendMessage, decoded.Event)

	var env Envelope
	require.NoError(t, DecodeData(decoded, &env))
	assert.Equal(t, "m1", env.ID)
	assert.Equal(t, "ada", env.From)
	assert.Equal(t, "lin", env.To)
	assert.Equal(t, "hi", env.Content)
}

func TestDecodeFrame_MissingEvent(t *testing.T) {
	_, err := DecodeFrame([]byte(`{"data":{}}`))
	assert.Error(t, err)
}

func TestDecodeFrame_Malformed(t *testing.T) {
	_, err := DecodeFrame([]byte(`{not json`))
	assert.Error(t, err)
}

func TestEnvelope_FileFieldNames(t *testing.T) {
	f := MustFrame(EventSendMessage, Envelope{
		From:     "ada",
		Content:  "photo",
		Type:     TypeImage,
		FileURL:  "/uploads/a.png",
		FileName: "a.png",
	})
	raw, err := f.Encode()
	require.NoError(t, err)

	// Clients depend on the camelCase field names.
	assert.Contains(t, string(raw), `"fileUrl":"/uploads/a.png"`)
	assert.Contains(t, string(raw), `"fileName":"a.png"`)
}

func TestEnvelope_Validate(t *testing.T) {
	tests := []struct {
		name    string
		env     Envelope
		wantErr bool
	}{
		{"direct text", Envelope{From: "ada", To: "lin", Content: "hi"}, false},
		{"room text", Envelope{From: "ada", Room: "ops", Content: "hi"}, false},
		{"broadcast text", Envelope{From: "ada", Content: "hi"}, false},
		{"missing from", Envelope{To: "lin", Content: "hi"}, true},
		{"to and room both set", Envelope{From: "ada", To: "lin", Room: "ops", Content: "hi"}, true},
		{"empty text content", Envelope{From: "ada", To: "lin"}, true},
		{"file without url", Envelope{From: "ada", To: "lin", Type: TypeFile}, true},
		{"image with url", Envelope{From: "ada", To: "lin", Type: TypeImage, FileURL: "/uploads/x.png"}, false},
		{"unknown type", Envelope{From: "ada", To: "lin", Type: "sticker", Content: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
