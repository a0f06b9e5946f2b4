package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"mapforge/internal/common"
)

var (
	validateOnce sync.Once
	structCheck  *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		structCheck = validator.New(validator.WithRequiredStructEnabled())
		structCheck.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			return name
		})
	})

	return structCheck
}

// Validate parses raw JSON and returns a well-formed project, or an error
// describing why the document is not acceptable. Structural problems are
// reported as *ValidationError; input that is not a JSON object yields
// ErrMalformed. Missing optional fields are filled with their defaults.
func Validate(raw []byte) (*Project, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: expected an object, got %s", ErrMalformed, doc.Type)
	}

	if err := checkVersion(doc.Get("version")); err != nil {
		return nil, err
	}

	var p Project
	if err := json.Unmarshal(raw, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			verr := &ValidationError{}
			verr.add(typeErr.Field, fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value))

			return nil, verr
		}

		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	p.normalize()

	if err := p.Check(); err != nil {
		return nil, err
	}

	return &p, nil
}

func checkVersion(v gjson.Result) error {
	verr := &ValidationError{Cause: ErrUnsupportedVersion}

	switch {
	case !v.Exists():
		verr.add("version", "required")
	case v.Type != gjson.Number || v.Raw != strconv.Itoa(CurrentVersion):
		verr.add("version", fmt.Sprintf("unsupported version %s, want %d", v.Raw, CurrentVersion))
	default:
		return nil
	}

	return verr
}

// Check validates an in-memory project: field tags, unique round ids,
// unique row ids per round and an existing active round.
func (p *Project) Check() error {
	verr := &ValidationError{}

	if p.Version != CurrentVersion {
		verr.Cause = ErrUnsupportedVersion
		verr.add("version", fmt.Sprintf("unsupported version %d, want %d", p.Version, CurrentVersion))
	}

	if err := structValidator().Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}

		for _, fe := range fieldErrs {
			verr.add(fieldPath(fe.Namespace()), describe(fe))
		}
	}

	p.checkIdentity(verr)

	return verr.orNil()
}

func (p *Project) checkIdentity(verr *ValidationError) {
	rounds := make(map[string]struct{}, len(p.Rounds))

	for i, r := range p.Rounds {
		if _, dup := rounds[r.ID]; dup && r.ID != "" {
			verr.add(fmt.Sprintf("rounds[%d].id", i), fmt.Sprintf("duplicate round id %q", r.ID))
		}

		rounds[r.ID] = struct{}{}

		rows := make(map[string]struct{}, len(r.Rows))
		for j, row := range r.Rows {
			if _, dup := rows[row.ID]; dup && row.ID != "" {
				verr.add(fmt.Sprintf("rounds[%d].rows[%d].id", i, j), fmt.Sprintf("duplicate row id %q", row.ID))
			}

			rows[row.ID] = struct{}{}
		}
	}

	if p.ActiveRoundID == "" || len(p.Rounds) == 0 {
		return
	}

	if _, ok := rounds[p.ActiveRoundID]; !ok {
		verr.add("activeRoundId", fmt.Sprintf("round %q does not exist", p.ActiveRoundID))
	}
}

// normalize fills optional fields with their defaults. Row statuses are
// required and never defaulted.
func (p *Project) normalize() {
	p.RubricEnabled = common.NonNil(p.RubricEnabled)
}

// fieldPath turns "Project.rounds[0].rows[1].status" into "rounds[0].rows[1].status".
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return rest
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	}

	return fmt.Sprintf("failed %q check", fe.Tag())
}
