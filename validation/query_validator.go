// Package validation checks user queries before they are sent to the
// inference backend.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/giygas/druginfo/entities"
	"github.com/giygas/druginfo/interfaces"
)

const (
	MaxDrugNameLength = 100
	MaxDrugNameWords  = 6
	maxRepeatedRunes  = 10
)

// ErrEmptyQuery is returned when neither text nor an image was given
var ErrEmptyQuery = errors.New("Please enter a prompt or upload an image.")

var (
	// Letters in any script, digits and the punctuation found in drug names:
	// "co-trimoxazole", "St. John's wort", "amoxicillin/clavulanate", "0.5%"
	inputRegex = regexp.MustCompile(`^[\p{L}\p{M}0-9\s\-\.\+'(),/%]+$`)

	// Matched with strings.Contains on the lower-cased input
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "url(", "@import",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(", "execute(",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// Prompt injection, names are forwarded to a language model
		"ignore previous", "ignore all previous", "system prompt",
	}
)

// QueryValidator validates drug names and medicine photos
type QueryValidator struct {
	maxImageSize int64
}

var _ interfaces.QueryValidator = (*QueryValidator)(nil)

// NewQueryValidator returns a validator accepting photos up to maxImageSize bytes
func NewQueryValidator(maxImageSize int64) *QueryValidator {
	return &QueryValidator{maxImageSize: maxImageSize}
}

// ValidateQuery checks whichever part of q will be sent: the image when
// present, otherwise the drug name.
func (v *QueryValidator) ValidateQuery(q entities.Query) error {
	if q.IsImage() {
		return v.ValidateImage(q.Image)
	}
	if strings.TrimSpace(q.DrugName) == "" {
		return ErrEmptyQuery
	}
	return v.ValidateInput(q.DrugName)
}

// ValidateInput validates a drug name
func (v *QueryValidator) ValidateInput(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return ErrEmptyQuery
	}

	if !utf8.ValidString(input) {
		return fmt.Errorf("drug name is not valid UTF-8")
	}

	if utf8.RuneCountInString(input) > MaxDrugNameLength {
		return fmt.Errorf("drug name too long: maximum %d characters", MaxDrugNameLength)
	}

	// Word count validation to prevent DoS attacks with many short words
	if len(strings.Fields(input)) > MaxDrugNameWords {
		return fmt.Errorf("drug name too complex: maximum %d words allowed", MaxDrugNameWords)
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("drug name contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("drug name contains invalid characters. Only letters, numbers, spaces and - ' . + ( ) , / %% are allowed")
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("drug name contains excessive character repetition")
	}

	return nil
}

// ValidateImage checks a photo is present, small enough and sniffs as an image
func (v *QueryValidator) ValidateImage(img *entities.ImageUpload) error {
	if img == nil || len(img.Data) == 0 {
		return fmt.Errorf("uploaded image is empty")
	}

	if v.maxImageSize > 0 && int64(len(img.Data)) > v.maxImageSize {
		return fmt.Errorf("uploaded image too large: maximum %d bytes", v.maxImageSize)
	}

	if ct := http.DetectContentType(img.Data); !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("uploaded file is not an image (detected %s)", ct)
	}

	return nil
}

// hasExcessiveRepetition reports a run of more than maxRepeatedRunes identical runes
func hasExcessiveRepetition(input string) bool {
	var prev rune
	run := 0
	for _, r := range input {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run > maxRepeatedRunes {
			return true
		}
	}
	return false
}
