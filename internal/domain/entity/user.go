package entity

// UserRef atribución de usuario provista por el colaborador de autenticación.
type UserRef struct {
	ID   string
	Name string
}
