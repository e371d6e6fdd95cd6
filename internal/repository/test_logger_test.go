package repository

type nopLogger struct{}

func (nopLogger) Info(msg string, fields ...interface{}) {}

func (nopLogger) Error(msg string, err error, fields ...interface{}) {}

func (nopLogger) Debug(msg string, fields ...interface{}) {}

func (nopLogger) Warn(msg string, fields ...interface{}) {}
