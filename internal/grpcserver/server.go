package grpcserver

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"romhub/internal/console"
	"romhub/internal/game"
	"romhub/pkg/models"
)

type Server struct {
	ConsoleRepo *console.Repo
	GameRepo    *game.Repo
}

func NewServer(consoleRepo *console.Repo, gameRepo *game.Repo) *Server {
	return &Server{ConsoleRepo: consoleRepo, GameRepo: gameRepo}
}

func (s *Server) ListConsoles(ctx context.Context, _ *ListConsolesRequest) (*ListConsolesResponse, error) {
	items, err := s.ConsoleRepo.List(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "list failed")
	}
	if items == nil {
		items = []models.Console{}
	}
	return &ListConsolesResponse{Items: items}, nil
}

func (s *Server) ListGames(ctx context.Context, req *ListGamesRequest) (*ListGamesResponse, error) {
	if req == nil || req.ConsoleID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "console_id required")
	}

	cons, err := s.ConsoleRepo.GetByID(ctx, req.ConsoleID)
	if err != nil {
		return nil, status.Error(codes.Internal, "get console failed")
	}
	if cons == nil {
		return nil, status.Error(codes.NotFound, "console not found")
	}

	items, err := s.GameRepo.ListByConsole(ctx, cons.ID)
	if err != nil {
		return nil, status.Error(codes.Internal, "list failed")
	}
	return &ListGamesResponse{ConsoleID: cons.ID, Items: items}, nil
}

func (s *Server) GetGame(ctx context.Context, req *GetGameRequest) (*GetGameResponse, error) {
	if req == nil || req.GameID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "game_id required")
	}

	g, err := s.GameRepo.GetWithReleases(ctx, req.GameID)
	if err != nil {
		return nil, status.Error(codes.Internal, "get failed")
	}
	if g == nil {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return &GetGameResponse{Game: *g}, nil
}

func (s *Server) ListReleaseRoms(ctx context.Context, req *ListReleaseRomsRequest) (*ListReleaseRomsResponse, error) {
	if req == nil || req.ReleaseID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "release_id required")
	}

	items, err := s.GameRepo.RomsForRelease(ctx, req.ReleaseID)
	if err != nil {
		return nil, status.Error(codes.Internal, "list failed")
	}
	return &ListReleaseRomsResponse{ReleaseID: req.ReleaseID, Items: items}, nil
}

// LoggingInterceptor logs every unary call with its status code and latency.
func LoggingInterceptor(logger *log.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = log.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Printf("[grpc] %s %s %s", info.FullMethod, status.Code(err), time.Since(start).Round(time.Microsecond))
		return resp, err
	}
}
