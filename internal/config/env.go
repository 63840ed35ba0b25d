package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

const (
	// envSeparator joins nested section names, e.g. Browser__Viewport__Width.
	envSeparator = "__"
	keyDelim     = "."
)

// applyEnvOverrides binds Section__Key variables onto settings. Section and key
// names match case-insensitively; map sections keep each variable's own key.
func applyEnvOverrides(settings *TestSettings, environ []string) error {
	overrides := make(map[string]any)

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.Contains(k, envSeparator) {
			continue
		}

		overrides[strings.ReplaceAll(k, envSeparator, keyDelim)] = v
	}

	if len(overrides) == 0 {
		return nil
	}

	k := koanf.New(keyDelim)
	if err := k.Load(confmap.Provider(overrides, keyDelim), nil); err != nil {
		return fmt.Errorf("loading environment overrides: %w", err)
	}

	err := k.UnmarshalWithConf("", settings, koanf.UnmarshalConf{
		Tag: "yaml",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				splitList,
				mapstructure.TextUnmarshallerHookFunc(),
			),
			TagName:          "yaml",
			WeaklyTypedInput: true,
			Result:           settings,
		},
	})
	if err != nil {
		return fmt.Errorf("decoding environment overrides: %w", err)
	}

	return nil
}

// splitList decodes "a, b" into []string{"a", "b"} for list settings.
func splitList(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.String {
		return data, nil
	}

	raw, _ := data.(string)
	values := make([]string, 0, strings.Count(raw, ",")+1)

	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}

	return values, nil
}
