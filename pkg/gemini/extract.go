package gemini

import (
	"encoding/json"
	"strings"

	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
)

// ExtractJSON returns the text between the first '{' and the last '}'.
func ExtractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// DecodeJSON extracts the embedded object from a model reply and decodes it into dst.
// Missing or malformed JSON is an upstream error.
func DecodeJSON(text string, dst any) error {
	raw, ok := ExtractJSON(text)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUpstream, "AI response did not contain a JSON object")
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "AI response could not be parsed")
	}
	return nil
}

// SplitDataURL strips a "data:<mime>;base64," prefix and reports the mime type
// it declared, defaulting to image/jpeg.
func SplitDataURL(value string) (mimeType, data string) {
	mimeType = "image/jpeg"
	data = strings.TrimSpace(value)
	idx := strings.Index(data, ",")
	if idx < 0 {
		return mimeType, data
	}
	header := data[:idx]
	data = data[idx+1:]
	if strings.HasPrefix(header, "data:") {
		declared := strings.TrimPrefix(header, "data:")
		declared = strings.TrimSuffix(declared, ";base64")
		if declared != "" {
			mimeType = declared
		}
	}
	return mimeType, data
}
