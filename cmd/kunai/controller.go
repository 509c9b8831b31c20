package main

import (
	"kunai/internal/app"
	"kunai/internal/memory"
	"kunai/internal/proc"
	"kunai/internal/session"
)

// controllerAPI is the part of app.App the commands use.
type controllerAPI interface {
	NewSession() *session.Session
	ListTasks(app.TaskParams) ([]proc.Task, error)
	Maps(pid string) (memory.Map, error)
	Scan(app.ScanParams) (app.ScanReport, error)
	Write(app.WriteParams) (app.WriteResult, error)
	Close() error
}

var controllerFactory = func() (controllerAPI, error) {
	a, err := app.New(app.Options{ConfigPath: configPath})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func controller() (controllerAPI, error) {
	return controllerFactory()
}
