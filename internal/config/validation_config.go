package config

type ValidationConfig interface {
	GetMinPasswordLength() int
}

type Validation struct{}

var _ ValidationConfig = Validation{}

func (Validation) GetMinPasswordLength() int {
	return GetEnvInt("MIN_PASSWORD_LENGTH", 8)
}
