/*
* Copyright 2022-2026 Thorsten A. Knieling
*
* Licensed under the Apache License, Version 2.0 (the "License");
* you may not use this file except in compliance with the License.
* You may obtain a copy of the License at
*
*    http://www.apache.org/licenses/LICENSE-2.0
*
 */

package codasyl

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/tknie/codasyl/common"
	"github.com/tknie/log"
)

var logRus = logrus.StandardLogger()
var once = new(sync.Once)

func InitLog(t *testing.T) {
	once.Do(startLog)
	log.Log.Debugf("TEST: %s", t.Name())
}

func startLog() {
	fmt.Println("Init logging")
	fileName := "codasyl.trace.log"
	level := os.Getenv("ENABLE_DB_DEBUG")
	logLevel := logrus.WarnLevel
	switch level {
	case "debug", "1":
		log.SetDebugLevel(true)
		logLevel = logrus.DebugLevel
	case "info", "2":
		log.SetDebugLevel(false)
		logLevel = logrus.InfoLevel
	default:
	}
	logRus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05",
	})
	logRus.SetLevel(logLevel)
	p := os.Getenv("LOGPATH")
	if p == "" {
		p = os.TempDir()
	}
	f, err := os.OpenFile(p+"/"+fileName, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		fmt.Println("Error opening log:", err)
		return
	}
	logRus.SetOutput(f)
	logRus.Infof("Init logrus")
	log.Log = logRus
	fmt.Println("Logging running")
}

func TestInitDatabases(t *testing.T) {
	InitLog(t)
	before := len(Registered())
	x, err := Register("sqlite", "sqlite://:memory:")
	if !assert.NoError(t, err) {
		return
	}
	assert.True(t, x > 0)
	assert.Len(t, Registered(), before+1)
	x2, err := Register("", "sqlite://:memory:")
	if !assert.NoError(t, err) {
		return
	}
	assert.True(t, x2 > x)
	assert.Len(t, Registered(), before+2)

	handle, driver, err := Handle(x2)
	assert.NoError(t, err)
	assert.NotNil(t, handle)
	assert.Equal(t, common.SQLiteType, driver)

	ru, err := BindRegistered(context.Background(), nil, loadSchema(t), x2)
	if assert.NoError(t, err) {
		assert.NoError(t, ru.Finish())
	}

	err = Unregister(x)
	assert.NoError(t, err)
	assert.Len(t, Registered(), before+1)
	err = Unregister(x2)
	assert.NoError(t, err)
	assert.Len(t, Registered(), before)

	_, _, err = Handle(x2)
	assert.Error(t, err)
	err = Unregister(x2)
	assert.Error(t, err)
}

func TestInitWrongDatabases(t *testing.T) {
	InitLog(t)
	x, err := Register("xxx", "sqlite://:memory:")
	assert.Error(t, err)
	assert.Equal(t, RegDbID(0), x)
	x, err = Register("", "::::")
	assert.Error(t, err)
	assert.Equal(t, RegDbID(0), x)
}
