package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"romhub/pkg/models"
)

const serviceName = "romhub.Catalog"

type ListConsolesRequest struct{}

type ListConsolesResponse struct {
	Items []models.Console `json:"items"`
}

type ListGamesRequest struct {
	ConsoleID int64 `json:"console_id"`
}

type ListGamesResponse struct {
	ConsoleID int64         `json:"console_id"`
	Items     []models.Game `json:"items"`
}

type GetGameRequest struct {
	GameID int64 `json:"game_id"`
}

type GetGameResponse struct {
	Game models.GameWithReleases `json:"game"`
}

type ListReleaseRomsRequest struct {
	ReleaseID int64 `json:"release_id"`
}

type ListReleaseRomsResponse struct {
	ReleaseID int64        `json:"release_id"`
	Items     []models.Rom `json:"items"`
}

// CatalogServer is the read-only catalog service.
type CatalogServer interface {
	ListConsoles(context.Context, *ListConsolesRequest) (*ListConsolesResponse, error)
	ListGames(context.Context, *ListGamesRequest) (*ListGamesResponse, error)
	GetGame(context.Context, *GetGameRequest) (*GetGameResponse, error)
	ListReleaseRoms(context.Context, *ListReleaseRomsRequest) (*ListReleaseRomsResponse, error)
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListConsoles",
			Handler: unary("ListConsoles", func(srv CatalogServer, ctx context.Context, in *ListConsolesRequest) (any, error) {
				return srv.ListConsoles(ctx, in)
			}),
		},
		{
			MethodName: "ListGames",
			Handler: unary("ListGames", func(srv CatalogServer, ctx context.Context, in *ListGamesRequest) (any, error) {
				return srv.ListGames(ctx, in)
			}),
		},
		{
			MethodName: "GetGame",
			Handler: unary("GetGame", func(srv CatalogServer, ctx context.Context, in *GetGameRequest) (any, error) {
				return srv.GetGame(ctx, in)
			}),
		},
		{
			MethodName: "ListReleaseRoms",
			Handler: unary("ListReleaseRoms", func(srv CatalogServer, ctx context.Context, in *ListReleaseRomsRequest) (any, error) {
				return srv.ListReleaseRoms(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "romhub/catalog",
}

// unary adapts a typed method to grpc's untyped handler signature, running
// the server interceptor chain when one is installed.
func unary[Req any](method string, call func(CatalogServer, context.Context, *Req) (any, error)) grpc.MethodHandler {
	fullMethod := "/" + serviceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CatalogServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CatalogClient calls the catalog service over conn using the JSON codec.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) ListConsoles(ctx context.Context, in *ListConsolesRequest, opts ...grpc.CallOption) (*ListConsolesResponse, error) {
	out := new(ListConsolesResponse)
	if err := c.invoke(ctx, "ListConsoles", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) ListGames(ctx context.Context, in *ListGamesRequest, opts ...grpc.CallOption) (*ListGamesResponse, error) {
	out := new(ListGamesResponse)
	if err := c.invoke(ctx, "ListGames", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) GetGame(ctx context.Context, in *GetGameRequest, opts ...grpc.CallOption) (*GetGameResponse, error) {
	out := new(GetGameResponse)
	if err := c.invoke(ctx, "GetGame", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) ListReleaseRoms(ctx context.Context, in *ListReleaseRomsRequest, opts ...grpc.CallOption) (*ListReleaseRomsResponse, error) {
	out := new(ListReleaseRomsResponse)
	if err := c.invoke(ctx, "ListReleaseRoms", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}
