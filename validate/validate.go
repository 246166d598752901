// Package validate checks generated text against a [schema.Model]: it
// locates the first top-level JSON object, snaps near-miss keys to the
// nearest schema property, and enforces required/extra-key constraints
// recursively.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/latticeforge/schemasteer/internal/errs"
	"github.com/latticeforge/schemasteer/schema"
)

// Options controls per-request validation behavior.
type Options struct {
	// AllowExtraKeys, if false (the default), makes an undeclared key in any
	// schema-described object a violation once key-snapping has had a chance
	// to correct it.
	AllowExtraKeys bool
	// EnableKeySnap turns on edit-distance-1 correction of unrecognized
	// keys to the nearest schema property name. Default true.
	EnableKeySnap bool
}

// DefaultOptions returns allowExtraKeys=false, enableKeySnap=true.
func DefaultOptions() Options {
	return Options{AllowExtraKeys: false, EnableKeySnap: true}
}

// ValidationError reports why text failed validation against a schema.
type ValidationError struct {
	Message    string
	Path       string
	Violations []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Violations, "; "))
}

// Validate locates the first top-level object, parses it, snaps
// unrecognized keys, enforces required/extra-key rules, and recurses into
// nested Object/Array schemas.
// On success it returns the (possibly key-snapped) decoded object. On
// failure it returns a *[ValidationError] wrapped in [errs.ErrValidationFailed].
func Validate(text string, model *schema.Model, opts Options) (map[string]any, error) {
	if !model.Valid() {
		return nil, wrapf(&ValidationError{Message: "schema model is invalid"})
	}

	slice, err := locateObject(text)
	if err != nil {
		return nil, wrapf(&ValidationError{Message: err.Error()})
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(slice), &obj); err != nil {
		return nil, wrapf(&ValidationError{Message: "invalid json: " + err.Error()})
	}

	root := model.Node(model.Root())

	if root.Kind != schema.KindObject {
		// Root is not an object schema; nothing further to check at this
		// level: validation is object-rooted, so a non-object root degrades
		// to "parsed successfully".
		return obj, nil
	}

	var violations []string

	obj, violations = checkObject(obj, root, model, opts, "$")

	if len(violations) > 0 {
		return obj, wrapf(&ValidationError{
			Message:    "schema validation failed",
			Path:       "$",
			Violations: violations,
		})
	}

	return obj, nil
}

func wrapf(ve *ValidationError) error {
	return fmt.Errorf("%w: %w", errs.ErrValidationFailed, ve)
}

// locateObject implements step 1: find the first top-level '{' and walk to
// its matching '}', respecting string/escape context, and return the
// slice.
func locateObject(text string) (string, error) {
	start := -1

	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}

		case r == '"':
			inString = true

		case r == '{':
			if depth == 0 {
				start = i
			}

			depth++

		case r == '}':
			if depth > 0 {
				depth--

				if depth == 0 && start >= 0 {
					return text[start : i+1], nil
				}
			}
		}
	}

	return "", fmt.Errorf("no top-level json object found")
}

// checkObject implements steps 3-6 for one Object node: key-snapping,
// required/extras enforcement, and recursion into nested schemas.
func checkObject(
	obj map[string]any,
	node schema.Node,
	model *schema.Model,
	opts Options,
	path string,
) (map[string]any, []string) {
	var violations []string

	if opts.EnableKeySnap {
		obj, violations = snapKeys(obj, node, violations)
	}

	for _, req := range node.Required {
		v, present := obj[req]
		if !present || v == nil {
			violations = append(violations, fmt.Sprintf("%s: missing required key %q", path, req))
		}
	}

	if !opts.AllowExtraKeys {
		for key := range obj {
			if !node.HasProperty(key) {
				violations = append(violations, fmt.Sprintf("%s: unexpected key %q", path, key))
			}
		}
	}

	for key, value := range obj {
		propID, ok := node.Properties[key]
		if !ok {
			continue
		}

		prop := model.Node(propID)
		childPath := path + "." + key

		switch prop.Kind {
		case schema.KindObject:
			childObj, ok := value.(map[string]any)
			if !ok {
				if value != nil {
					violations = append(violations, fmt.Sprintf("%s: expected object", childPath))
				}

				continue
			}

			var childViolations []string

			childObj, childViolations = checkObject(childObj, prop, model, opts, childPath)
			obj[key] = childObj
			violations = append(violations, childViolations...)

		case schema.KindArray:
			arr, ok := value.([]any)
			if !ok {
				if value != nil {
					violations = append(violations, fmt.Sprintf("%s: expected array", childPath))
				}

				continue
			}

			violations = append(violations, checkArray(arr, prop, model, opts, childPath)...)

		case schema.KindString:
			if _, ok := value.(string); !ok && value != nil {
				violations = append(violations, fmt.Sprintf("%s: expected string", childPath))
			}

		case schema.KindNumber:
			if _, ok := value.(float64); !ok && value != nil {
				violations = append(violations, fmt.Sprintf("%s: expected number", childPath))
			}

		case schema.KindBoolean:
			if _, ok := value.(bool); !ok && value != nil {
				violations = append(violations, fmt.Sprintf("%s: expected boolean", childPath))
			}
		}
	}

	return obj, violations
}

func checkArray(arr []any, node schema.Node, model *schema.Model, opts Options, path string) []string {
	return checkArrayItems(arr, node, model, opts, path)
}

func checkArrayItems(arr []any, node schema.Node, model *schema.Model, opts Options, path string) []string {
	if node.Items < 0 {
		return nil
	}

	item := model.Node(node.Items)

	var violations []string

	for i, elem := range arr {
		elemPath := fmt.Sprintf("%s[%d]", path, i)

		switch item.Kind {
		case schema.KindObject:
			elemObj, ok := elem.(map[string]any)
			if !ok {
				if elem != nil {
					violations = append(violations, fmt.Sprintf("%s: expected object", elemPath))
				}

				continue
			}

			var childViolations []string

			elemObj, childViolations = checkObject(elemObj, item, model, opts, elemPath)
			arr[i] = elemObj
			violations = append(violations, childViolations...)

		case schema.KindArray:
			elemArr, ok := elem.([]any)
			if !ok {
				if elem != nil {
					violations = append(violations, fmt.Sprintf("%s: expected array", elemPath))
				}

				continue
			}

			violations = append(violations, checkArrayItems(elemArr, item, model, opts, elemPath)...)

		case schema.KindString:
			if _, ok := elem.(string); !ok && elem != nil {
				violations = append(violations, fmt.Sprintf("%s: expected string", elemPath))
			}

		case schema.KindNumber:
			if _, ok := elem.(float64); !ok && elem != nil {
				violations = append(violations, fmt.Sprintf("%s: expected number", elemPath))
			}

		case schema.KindBoolean:
			if _, ok := elem.(bool); !ok && elem != nil {
				violations = append(violations, fmt.Sprintf("%s: expected boolean", elemPath))
			}
		}
	}

	return violations
}

// snapKeys implements step 3: for each top-level key absent from node's
// declared properties, attempt an edit-distance-1 correction to a schema
// key; renaming only when exactly one candidate matches.
func snapKeys(obj map[string]any, node schema.Node, violations []string) (map[string]any, []string) {
	for key, value := range obj {
		if node.HasProperty(key) {
			continue
		}

		candidates := candidatesWithinDistance1(key, node.PropertyOrder)
		if len(candidates) == 1 {
			delete(obj, key)
			obj[candidates[0]] = value
		}
	}

	return obj, violations
}

func candidatesWithinDistance1(key string, properties []string) []string {
	var out []string

	for _, p := range properties {
		if editDistanceAtMost1(key, p) {
			out = append(out, p)
		}
	}

	sort.Strings(out)

	return out
}

// editDistanceAtMost1 reports whether a and b differ by at most one
// single-character insertion, deletion, or substitution.
func editDistanceAtMost1(a, b string) bool {
	if a == b {
		return true
	}

	la, lb := len(a), len(b)
	if abs(la-lb) > 1 {
		return false
	}

	if la == lb {
		mismatches := 0

		for i := 0; i < la; i++ {
			if a[i] != b[i] {
				mismatches++
				if mismatches > 1 {
					return false
				}
			}
		}

		return true
	}

	// One insertion/deletion apart: walk both, allow exactly one skip.
	shorter, longer := a, b
	if la > lb {
		shorter, longer = b, a
	}

	i, j, skipped := 0, 0, false

	for i < len(shorter) && j < len(longer) {
		if shorter[i] == longer[j] {
			i++
			j++

			continue
		}

		if skipped {
			return false
		}

		skipped = true
		j++
	}

	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}
