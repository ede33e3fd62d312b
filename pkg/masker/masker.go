package masker

import (
	"errors"
	"reflect"

	"go.uber.org/zap"
)

var ErrConfigNotPointer = errors.New("config must be a pointer to a struct")

// LogConfigs logs each config struct on its own line, recursing into nested
// structs. String fields tagged `masked:"true"` are logged masked so secrets
// (credentials, SMTP passwords, designer keys) never reach the log stream.
func LogConfigs(logger *zap.Logger, configs ...interface{}) error {
	for _, config := range configs {
		v := reflect.ValueOf(config)
		t := reflect.TypeOf(config)

		if v.Kind() != reflect.Ptr {
			return ErrConfigNotPointer
		}
		v = v.Elem()
		t = t.Elem()

		logger.Info("config", zap.Any(t.Name(), maskStructFields(v, t)))
	}
	return nil
}

func maskStructFields(v reflect.Value, t reflect.Type) map[string]interface{} {
	result := make(map[string]interface{})
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		switch field.Kind() {
		case reflect.Struct:
			result[fieldType.Name] = maskStructFields(field, field.Type())
		case reflect.String:
			if fieldType.Tag.Get("masked") == "true" {
				result[fieldType.Name] = maskSensitiveData(field.String())
			} else {
				result[fieldType.Name] = field.String()
			}
		default:
			result[fieldType.Name] = field.Interface()
		}
	}
	return result
}

// maskSensitiveData keeps only the first and last characters of a value.
// Values of two characters or fewer mask entirely.
func maskSensitiveData(data string) string {
	if len(data) <= 2 {
		return "****"
	}
	return string(data[0]) + "****" + string(data[len(data)-1])
}
