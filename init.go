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
	"database/sql"
	"sync"
	"sync/atomic"

	"github.com/tknie/codasyl/common"
	"github.com/tknie/codasyl/db2"
	"github.com/tknie/codasyl/mysql"
	"github.com/tknie/codasyl/oracle"
	"github.com/tknie/codasyl/postgres"
	"github.com/tknie/codasyl/sqlite"
	"github.com/tknie/codasyl/sqlserver"
	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
)

// RegDbID registry id of a registered database
type RegDbID uint64

type registration struct {
	id     RegDbID
	driver common.ReferenceType
	url    string
	db     *sql.DB
}

var globalRegID = RegDbID(0)

var registryLock sync.Mutex
var databases = make([]*registration, 0)

// Register database driver with a database URL returning a
// reference id for the driver path to database. An empty type name
// takes the type out of the URL.
func Register(typeName, url string) (RegDbID, error) {
	ref, passwd, err := common.NewReference(url)
	if err != nil {
		return 0, errorrepo.NewError("DB000010", url)
	}
	if typeName != "" {
		ref.SetType(typeName)
	}
	if ref.Driver == common.NoType {
		return 0, errorrepo.NewError("DB000003", typeName)
	}
	db, err := Open(ref, passwd)
	if err != nil {
		return 0, err
	}
	id := RegDbID(atomic.AddUint64((*uint64)(&globalRegID), 1))
	registryLock.Lock()
	defer registryLock.Unlock()
	databases = append(databases, &registration{id: id, driver: ref.Driver, url: url, db: db})
	log.Log.Debugf("Registered %s database id=%d", ref.Driver, id)
	return id, nil
}

// Open open the database handle of the reference using the backend of
// the reference type
func Open(ref *common.Reference, passwd string) (*sql.DB, error) {
	switch ref.Driver {
	case common.PostgresType:
		return postgres.Open(ref, passwd)
	case common.MysqlType:
		return mysql.Open(ref, passwd)
	case common.OracleType:
		return oracle.Open(ref, passwd)
	case common.SqlServerType:
		return sqlserver.Open(ref, passwd)
	case common.DB2Type:
		return db2.Open(ref, passwd)
	case common.SQLiteType:
		return sqlite.Open(ref, passwd)
	default:
	}
	return nil, errorrepo.NewError("DB065535")
}

// Handle database handle and type of the registry id
func Handle(id RegDbID) (*sql.DB, common.ReferenceType, error) {
	registryLock.Lock()
	defer registryLock.Unlock()
	for _, d := range databases {
		if d.id == id {
			return d.db, d.driver, nil
		}
	}
	return nil, common.NoType, errorrepo.NewError("DB000002", id)
}

// Registered registry ids of all registered databases
func Registered() []RegDbID {
	registryLock.Lock()
	defer registryLock.Unlock()
	ids := make([]RegDbID, 0, len(databases))
	for _, d := range databases {
		ids = append(ids, d.id)
	}
	return ids
}

// Unregister unregister registry id for the driver and close the
// database handle
func Unregister(id RegDbID) error {
	registryLock.Lock()
	defer registryLock.Unlock()
	for i, d := range databases {
		if d.id == id {
			databases = append(databases[:i], databases[i+1:]...)
			if err := d.db.Close(); err != nil {
				log.Log.Errorf("Close of database %d failed: %v", id, err)
			}
			return nil
		}
	}
	return errorrepo.NewError("DB000001")
}
