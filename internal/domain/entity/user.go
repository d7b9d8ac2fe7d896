package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleEmpleado = "empleado"
)

// User representa un usuario del punto de venta. Es dueño de productos, ventas y reportes.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // admin, empleado
	ManagerID    string // vacío si no tiene jefe
	IsActive     bool
	CreatedAt    time.Time
}

// IsAdmin indica si el usuario tiene rol admin.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// ValidRole indica si role pertenece al conjunto cerrado de roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmpleado
}
