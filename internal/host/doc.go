// Package host — минимальная модель хост-платформы, в которую встраивается панель.
//
// Хост умеет две вещи:
//   - отдавать файл по зарегистрированному статическому пути (RegisterStaticPath)
//   - хранить реестр панелей боковой навигации (RegisterPanel)
//
// Реестр панелей отдаётся фронтенду через GET /api/panels (см. internal/api).
package host
