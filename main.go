package main

import (
	"os"

	"stackrent/account"
	"stackrent/avatar"
	"stackrent/bizerror"
	"stackrent/client/es"
	"stackrent/client/s3"
	"stackrent/domain"
	"stackrent/domain/assignment"
	"stackrent/domain/checkout"
	"stackrent/domain/progress"
	"stackrent/domain/stack"
	"stackrent/indices"
	"stackrent/infra/tracing"
	"stackrent/persistence"
	"stackrent/servehttp"
	"stackrent/session"
	"stackrent/sessions"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Info("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v", err)
	}
	defer ds.Stop()

	// database migration (race condition between instances tolerated)
	err = ds.GormDB(nil).AutoMigrate(
		&account.User{}, &account.Employee{}, &session.Record{},
		&domain.Stack{}, &domain.SubStack{},
		&domain.Order{}, &domain.OrderItem{}, &domain.CartStack{},
		&assignment.Assignment{}).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v", err)
	}

	if closer := tracing.Bootstrap(); closer != nil {
		defer closer.Close()
	}

	esClient, err := es.NewClientFromEnv()
	if err != nil {
		logrus.Fatalf("search client init failed %v", err)
	}
	objectStore, err := s3.BuildObjectStoreFromEnv()
	if err != nil {
		logrus.Fatalf("object store init failed %v", err)
	}

	accounts := account.NewManager(ds)
	if err := accounts.EnsureDefaultAdmin(); err != nil {
		logrus.Fatalf("default admin seeding failed %v", err)
	}

	sessionManager := session.NewManager(ds)
	sessionManager.LoadUserFunc = accounts.LoadSessionUser

	indexer := indices.NewIndexer(ds, esClient)
	indexer.StartCron()

	stacks := stack.NewManager(ds)
	stacks.NotifyIndexFunc = indexer.IndexStacks
	assignments := assignment.NewManager(ds)
	progresses := progress.NewManager(ds)
	checkouts := checkout.NewManager(ds)
	avatars := avatar.NewManager(objectStore)

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())

	sessions.RegisterSessionsHandlers(engine, accounts, sessionManager)

	auth := sessionManager.AuthFilter()
	sessions.RegisterAdminHomeHandler(engine, auth)
	stack.RegisterStacksHandlers(engine, stacks, auth)
	assignment.RegisterAssignmentsHandlers(engine, assignments, auth)
	progress.RegisterProgressHandlers(engine, progresses, auth)
	checkout.RegisterCheckoutHandlers(engine, checkouts, auth)
	account.RegisterEmployeesHandlers(engine, accounts, auth)
	avatar.RegisterAvatarsHandlers(engine, avatars, auth)
	indices.RegisterIndicesHandlers(engine, indexer, auth)

	servehttp.StartHTTPServer(servehttp.AdminHostRewrite(engine, os.Getenv("ADMIN_HOST")))
}
