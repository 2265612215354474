package schema

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Rule names understood by CompileRules.
const (
	RuleRequired  = "required"
	RuleMinLength = "min_length"
	RuleMaxLength = "max_length"
	RuleLength    = "length"
	RulePattern   = "pattern"
	RuleIn        = "in"
)

// CompileRules converts the declarative rules of a field into ozzo rules.
// Unknown rule names and malformed arguments are reported so misconfigured
// schemas fail at load time.
func CompileRules(field FieldDefinition) ([]validation.Rule, error) {
	if len(field.Rules) == 0 {
		return nil, nil
	}
	out := make([]validation.Rule, 0, len(field.Rules))
	for _, rule := range field.Rules {
		compiled, err := compileRule(field, rule)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Key, err)
		}
		out = append(out, compiled)
	}
	return out, nil
}

func compileRule(field FieldDefinition, rule Rule) (validation.Rule, error) {
	name := canonical(rule.Name)
	switch name {
	case RuleRequired:
		return withMessage(validation.Required, rule.Message), nil
	case RuleMinLength:
		n, ok := intArg(rule.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects an integer", ErrUnknownRule, name)
		}
		return withMessage(validation.Length(n, 0), rule.Message), nil
	case RuleMaxLength:
		n, ok := intArg(rule.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects an integer", ErrUnknownRule, name)
		}
		return withMessage(validation.Length(0, n), rule.Message), nil
	case RuleLength:
		minimum, maximum, ok := boundsArg(rule.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects [min, max]", ErrUnknownRule, name)
		}
		return withMessage(validation.Length(minimum, maximum), rule.Message), nil
	case RulePattern:
		pattern, _ := rule.Value.(string)
		re, err := regexp.Compile(pattern)
		if err != nil || pattern == "" {
			return nil, fmt.Errorf("%w: %s expects a valid regular expression", ErrUnknownRule, name)
		}
		return withMessage(validation.Match(re), rule.Message), nil
	case RuleIn:
		allowed := inArgs(rule.Value)
		if len(allowed) == 0 {
			allowed = optionKeys(field)
		}
		if len(allowed) == 0 {
			return nil, fmt.Errorf("%w: %s needs values or field options", ErrUnknownRule, name)
		}
		return withMessage(validation.In(allowed...), rule.Message), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, rule.Name)
	}
}

// ValidateValue runs the compiled rules against value. Non string scalars
// are checked through their string form so length and pattern rules apply to
// numbers submitted by forms.
func ValidateValue(rules []validation.Rule, value any) error {
	if len(rules) == 0 {
		return nil
	}
	return validation.Validate(ruleInput(value), rules...)
}

func ruleInput(value any) any {
	switch v := value.(type) {
	case nil, string, []any, map[string]any:
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

type messageRule struct {
	inner   validation.Rule
	message string
}

func (r messageRule) Validate(value any) error {
	if err := r.inner.Validate(value); err != nil {
		return validation.NewError("validation_rule", r.message)
	}
	return nil
}

func withMessage(rule validation.Rule, message string) validation.Rule {
	if strings.TrimSpace(message) == "" {
		return rule
	}
	return messageRule{inner: rule, message: message}
}

func intArg(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

func boundsArg(value any) (int, int, bool) {
	switch v := value.(type) {
	case []any:
		if len(v) != 2 {
			return 0, 0, false
		}
		minimum, okMin := intArg(v[0])
		maximum, okMax := intArg(v[1])
		return minimum, maximum, okMin && okMax
	case map[string]any:
		minimum, okMin := intArg(v["min"])
		maximum, okMax := intArg(v["max"])
		if !okMin {
			minimum, okMin = 0, true
		}
		if !okMax {
			maximum, okMax = 0, true
		}
		return minimum, maximum, okMin && okMax
	default:
		return 0, 0, false
	}
}

func inArgs(value any) []any {
	switch v := value.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, ruleInput(item))
		}
		return out
	case []string:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out
	default:
		return nil
	}
}

func optionKeys(field FieldDefinition) []any {
	keys := make([]string, 0, len(field.Config.Options))
	for key := range field.Config.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, key := range keys {
		out = append(out, key)
	}
	return out
}
