package host

import "errors"

var (
	// ErrAlreadyRegistered — панель с таким url_path уже зарегистрирована.
	ErrAlreadyRegistered = errors.New("already registered")

	// ErrConflict — статический путь уже указывает на другой файл.
	ErrConflict = errors.New("static path conflict")

	// ErrInvalidPath — некорректный URL-путь.
	ErrInvalidPath = errors.New("invalid url path")
)
