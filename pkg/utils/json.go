package utils

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PrettyJson formata qualquer valor (ou []byte já serializado) com indentação.
func PrettyJson(in any) string {
	if raw, ok := in.([]byte); ok {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			logrus.WithError(err).Debug("utils: conteúdo não é JSON válido")
			return string(raw)
		}
		in = v
	}

	out, err := json.MarshalIndent(in, "", "\t")
	if err != nil {
		logrus.WithError(err).Debug("utils: falha ao serializar JSON")
		return ""
	}

	return string(out)
}
