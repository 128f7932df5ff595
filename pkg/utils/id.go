package utils

import (
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID gera ids curtos para entradas de auditoria.
func GenerateID() (string, error) {
	return gonanoid.Generate(characters, 12)
}

// NewRunID gera o identificador de uma execução do otimizador.
func NewRunID() string {
	return uuid.NewString()
}
