package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Papéis aceitos nos tokens de serviço.
const (
	RoleOperator = "operator" // dispara e interrompe execuções
	RoleViewer   = "viewer"   // apenas consulta status e histórico
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
