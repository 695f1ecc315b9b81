package camera

import (
	"encoding/json"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/cameramodels/logging"
)

// Config is the persisted and exchanged form of a camera. ModelID is authoritative; Model is
// written for readability and, when both are given, must name the same model.
type Config struct {
	ModelID *ModelID  `json:"model_id,omitempty"`
	Model   string    `json:"model,omitempty"`
	Width   int       `json:"width_px" jsonschema:"minimum=1"`
	Height  int       `json:"height_px" jsonschema:"minimum=1"`
	Params  []float64 `json:"params"`
}

// newConfigValidationError wraps err with the config path that produced it.
func newConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return strings.Join([]string{path, field}, ".")
}

// resolveModelID returns the model identified by the config.
func (conf *Config) resolveModelID() (ModelID, error) {
	switch {
	case conf.ModelID != nil:
		if _, err := Lookup(*conf.ModelID); err != nil {
			return -1, err
		}
		if conf.Model != "" {
			byName, err := IDFor(conf.Model)
			if err != nil {
				return -1, err
			}
			if byName != *conf.ModelID {
				return -1, errors.Errorf("model %q does not match model_id %d (%s)",
					conf.Model, int(*conf.ModelID), *conf.ModelID)
			}
		}
		return *conf.ModelID, nil
	case conf.Model != "":
		return IDFor(conf.Model)
	default:
		return -1, errors.New("one of model_id or model is required")
	}
}

// Validate checks that the config describes a valid camera, reporting every problem found.
func (conf *Config) Validate(path string) error {
	var err error
	id, idErr := conf.resolveModelID()
	if idErr != nil {
		multierr.AppendInto(&err, newConfigValidationError(joinPath(path, "model_id"), idErr))
	} else if arity, _ := ArityFor(id); len(conf.Params) != arity {
		multierr.AppendInto(&err, newConfigValidationError(joinPath(path, "params"),
			NewInvalidArityError(id.String(), arity, len(conf.Params))))
	}
	if conf.Width <= 0 {
		multierr.AppendInto(&err, newConfigValidationError(joinPath(path, "width_px"),
			errors.Wrapf(ErrInvalidSize, "width must be positive, got %d", conf.Width)))
	}
	if conf.Height <= 0 {
		multierr.AppendInto(&err, newConfigValidationError(joinPath(path, "height_px"),
			errors.Wrapf(ErrInvalidSize, "height must be positive, got %d", conf.Height)))
	}
	return err
}

// NewConfigFromAttributes decodes a config from a generic attribute map, such as one parsed from
// a larger JSON document. Unknown keys are rejected.
func NewConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	var conf Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &conf,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "error decoding camera attributes")
	}
	return &conf, nil
}

// NewCameraFromConfig validates conf and builds the camera it describes. A nil logger logs to
// the global logger.
func NewCameraFromConfig(conf *Config, logger logging.Logger) (Camera, error) {
	if logger == nil {
		logger = logging.Global()
	}
	if conf == nil {
		return Camera{}, errors.New("camera config is nil")
	}
	if err := conf.Validate(""); err != nil {
		return Camera{}, err
	}
	id, err := conf.resolveModelID()
	if err != nil {
		return Camera{}, err
	}
	cam, err := NewCamera(id, conf.Width, conf.Height, conf.Params)
	if err != nil {
		return Camera{}, err
	}
	logger.Debugw("built camera", "model", id.String(), "width", conf.Width, "height", conf.Height)
	return cam, nil
}

// Config returns the persisted form of the camera.
func (c Camera) Config() *Config {
	id := c.id
	return &Config{
		ModelID: &id,
		Model:   id.String(),
		Width:   c.width,
		Height:  c.height,
		Params:  copyParams(c.params),
	}
}

// MarshalJSON encodes the camera as its Config.
func (c Camera) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Config())
}

// UnmarshalJSON decodes a Config and validates it before replacing the camera.
func (c *Camera) UnmarshalJSON(data []byte) error {
	var conf Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return errors.Wrap(err, "error parsing camera JSON")
	}
	if err := conf.Validate(""); err != nil {
		return err
	}
	id, err := conf.resolveModelID()
	if err != nil {
		return err
	}
	cam, err := NewCamera(id, conf.Width, conf.Height, conf.Params)
	if err != nil {
		return err
	}
	*c = cam
	return nil
}

// ConfigSchema returns the JSON schema of Config.
func ConfigSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
