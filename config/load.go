package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"
	"strings"
	"text/template"

	"dario.cat/mergo"
	"github.com/mitchellh/mapstructure"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/util"
	"github.com/xeipuuv/gojsonschema"
)

const (
	// APITokenEnvVar is both the environment variable holding a git API token and the
	// placeholder it replaces in the Terraform source reference.
	APITokenEnvVar = "API_TOKEN"

	templateRoot = "config"
	renderPasses = 2
	pathSep      = "."
)

//go:embed schema.json
var schema []byte

// Load reads the deployer config at path, applies the --var overrides, renders
// `{{ .config.key }}` references, substitutes the API token from env into the
// Terraform reference, and validates the result against the config schema.
func Load(path string, overrides []string, env map[string]string) (Config, error) {
	path, err := util.ExpandHome(path)
	if err != nil {
		return Config{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.New(err)
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(content, &doc); err != nil {
		return Config{}, errors.Errorf("failed to parse %s: %w", path, err)
	}

	vars, err := ParseOverrides(overrides)
	if err != nil {
		return Config{}, err
	}

	if err := mergo.Merge(&doc, vars, mergo.WithOverride); err != nil {
		return Config{}, errors.Errorf("failed to apply --var overrides: %w", err)
	}

	if doc, err = render(doc); err != nil {
		return Config{}, err
	}

	substituteToken(doc, env[APITokenEnvVar])

	if err := validate(path, doc); err != nil {
		return Config{}, err
	}

	return decode(doc)
}

// ParseOverrides turns --var values into a document. Each value is either a JSON
// object, merged as is, or `key=value`, where a dotted key addresses a nested
// setting.
func ParseOverrides(overrides []string) (map[string]any, error) {
	vars := make(map[string]any)

	for _, override := range overrides {
		obj := make(map[string]any)
		if err := json.Unmarshal([]byte(override), &obj); err == nil {
			if err := mergo.Merge(&vars, obj, mergo.WithOverride); err != nil {
				return nil, errors.New(err)
			}

			continue
		}

		key, value, ok := strings.Cut(override, "=")
		if !ok || key == "" {
			return nil, errors.New(InvalidOverrideError(override))
		}

		if err := mergo.Merge(&vars, nested(strings.Split(key, pathSep), value), mergo.WithOverride); err != nil {
			return nil, errors.New(err)
		}
	}

	return vars, nil
}

func nested(path []string, value any) map[string]any {
	if len(path) == 1 {
		return map[string]any{path[0]: value}
	}

	return map[string]any{path[0]: nested(path[1:], value)}
}

// render evaluates the document as a template against itself. The second pass
// resolves references to values that were themselves templates.
func render(doc map[string]any) (map[string]any, error) {
	var text bytes.Buffer

	encoder := json.NewEncoder(&text)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(doc); err != nil {
		return nil, errors.New(err)
	}

	tmpl, err := template.New(templateRoot).Option("missingkey=error").Parse(text.String())
	if err != nil {
		return nil, errors.Errorf("failed to parse config templates: %w", err)
	}

	current := doc

	for range renderPasses {
		var out bytes.Buffer
		if err := tmpl.Execute(&out, map[string]any{templateRoot: current}); err != nil {
			return nil, errors.Errorf("failed to render config templates: %w", err)
		}

		next := make(map[string]any)
		if err := json.Unmarshal(out.Bytes(), &next); err != nil {
			return nil, errors.Errorf("rendered config is not valid JSON: %w", err)
		}

		current = next
	}

	return current, nil
}

func substituteToken(doc map[string]any, token string) {
	ref, ok := doc["terraform"].(string)
	if token == "" || !ok || !strings.Contains(ref, APITokenEnvVar) {
		return
	}

	doc["terraform"] = strings.ReplaceAll(ref, APITokenEnvVar, token)
	doc[APITokenEnvVar] = token
}

func validate(path string, doc map[string]any) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return errors.Errorf("failed to validate %s: %w", path, err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, len(result.Errors()))
	for i, violation := range result.Errors() {
		violations[i] = violation.String()
	}

	return errors.New(SchemaValidationError{Path: path, Errors: violations})
}

func decode(doc map[string]any) (Config, error) {
	cfg := Config{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, errors.New(err)
	}

	if err := decoder.Decode(doc); err != nil {
		return Config{}, errors.Errorf("failed to decode config: %w", err)
	}

	switch {
	case cfg.Version == 0:
		cfg.Version = CurrentVersion
	case cfg.Version > CurrentVersion:
		return Config{}, errors.New(UnsupportedVersionError{Version: cfg.Version})
	}

	if cfg.Tags == nil {
		cfg.Tags = make(map[string]string)
	}

	if cfg.TFVarsFile == "" {
		cfg.TFVarsFile = DefaultTFVarsFile
	}

	cfg.raw = doc

	return cfg, nil
}
