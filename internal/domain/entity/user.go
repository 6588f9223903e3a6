package entity

// Roles válidos para User.
const (
	RoleAdmin  = "ADMIN"
	RoleCajero = "CAJERO"
)

// User es el operador autenticado (la gestión de cuentas vive fuera de este servicio).
type User struct {
	ID    string
	Email string
	Name  string
	Role  string
}
