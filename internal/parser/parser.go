package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/json2env/internal/errors" // Custom errors package
	"github.com/mcncl/json2env/internal/models"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// Options controls how raw input is accepted.
type Options struct {
	// JSONC allows // and /* */ comments and trailing commas in the input.
	JSONC bool
}

// Parse reads a whole JSON document from reader into an IntermediateRepresentation.
func Parse(reader io.Reader, opts Options) (models.IntermediateRepresentation, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("could not read input", err)
	}
	return ParseBytes(data, opts)
}

// ParseBytes validates data and returns its parsed form. Exactly one JSON value
// must be present; surrounding whitespace is allowed.
func ParseBytes(data []byte, opts Options) (models.IntermediateRepresentation, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	if !utf8.Valid(data) {
		return models.IntermediateRepresentation{}, errors.NewParsingError("input is not valid UTF-8", errors.ErrInvalidUTF8)
	}
	if opts.JSONC {
		data = jsonc.ToJSON(data)
	}
	if !gjson.ValidBytes(data) {
		return models.IntermediateRepresentation{}, syntaxError(data)
	}
	if err := checkSurrogates(data); err != nil {
		return models.IntermediateRepresentation{}, err
	}

	root := gjson.ParseBytes(data)
	return models.IntermediateRepresentation{
		Root:        root,
		RootIsArray: root.IsArray(),
	}, nil
}

// syntaxError describes why data was rejected, with a byte offset when one can be located.
func syntaxError(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	var first json.RawMessage
	err := decoder.Decode(&first)
	if err == nil {
		end := decoder.InputOffset()
		if _, err := decoder.Token(); stderrors.Is(err, io.EOF) {
			return errors.NewParsingError("input does not contain valid JSON", errors.ErrInvalidJSON)
		}
		return errors.NewParsingError(
			fmt.Sprintf("unexpected data after the first JSON value at offset %d", end),
			errors.ErrInvalidJSON,
		)
	}

	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error()),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("input does not contain valid JSON", errors.ErrInvalidJSON)
}

// checkSurrogates rejects \u escapes that encode half of a UTF-16 surrogate
// pair without its partner. data must already be valid JSON, so every
// backslash is inside a string literal.
func checkSurrogates(data []byte) error {
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			continue
		}
		if data[i+1] != 'u' {
			i++
			continue
		}
		r := hexRune(data[i+2 : i+6])
		if !utf16.IsSurrogate(r) {
			i += 5
			continue
		}
		if r < 0xdc00 && i+11 < len(data) && data[i+6] == '\\' && data[i+7] == 'u' {
			if low := hexRune(data[i+8 : i+12]); low >= 0xdc00 && low <= 0xdfff {
				i += 11
				continue
			}
		}
		return errors.NewParsingError(
			fmt.Sprintf("invalid unicode escape at offset %d: unpaired surrogate", i),
			errors.ErrInvalidJSON,
		)
	}
	return nil
}

// hexRune decodes the four hex digits of a \u escape already checked by the validator.
func hexRune(digits []byte) rune {
	r, _ := strconv.ParseUint(string(digits), 16, 32)
	return rune(r)
}

// ParseString parses JSON from a string
func ParseString(jsonString string, opts Options) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(jsonString), opts)
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string, opts Options) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IntermediateRepresentation{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file, opts)
}
