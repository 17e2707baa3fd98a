// Package panel регистрирует KNX-панель в хосте.
//
// Register вызывается один раз при старте: отдаёт собранный JS панели по
// статическому пути и добавляет пункт в боковую навигацию (только для
// администраторов). Возвращённый Registration снимает регистрацию.
package panel
