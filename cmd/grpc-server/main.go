package main

import (
	"log"
	"net"

	"google.golang.org/grpc"

	"romhub/internal/console"
	"romhub/internal/game"
	"romhub/internal/grpcserver"
	"romhub/pkg/database"
	"romhub/pkg/utils"
)

func main() {
	db, err := database.OpenMigrated(database.DefaultConfig())
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer db.Close()

	srvCfg := utils.LoadServerConfig()
	listener, err := net.Listen("tcp", srvCfg.GrpcAddr)
	if err != nil {
		log.Fatalf("grpc listen failed: %v", err)
	}

	svc := grpcserver.NewServer(console.NewRepo(db), game.NewRepo(db))

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LoggingInterceptor(log.Default())))
	grpcserver.RegisterCatalogServer(grpcServer, svc)

	log.Printf("gRPC server listening on %s", srvCfg.GrpcAddr)
	if err := grpcServer.Serve(listener); err != nil {
		log.Fatalf("grpc server stopped: %v", err)
	}
}
