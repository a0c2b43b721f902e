package matchmaking

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/muzz-matchmaking/internal/app"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "matchmaking.v1.MatchmakingService"

// MatchmakingServer is the server API of matchmaking.v1.MatchmakingService.
type MatchmakingServer interface {
	RecordSwipe(context.Context, *RecordSwipeRequest) (*RecordSwipeResponse, error)
	RespondToMatchRequest(context.Context, *RespondToMatchRequestRequest) (*RespondToMatchRequestResponse, error)
	CreateMatchRequest(context.Context, *CreateMatchRequestRequest) (*CreateMatchRequestResponse, error)
	ListPendingMatchRequests(context.Context, *ListPendingMatchRequestsRequest) (*ListPendingMatchRequestsResponse, error)
	GetMatch(context.Context, *GetMatchRequest) (*GetMatchResponse, error)
	ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error)
	ListLikedYou(context.Context, *ListLikedYouRequest) (*ListLikedYouResponse, error)
	ListNewLikedYou(context.Context, *ListLikedYouRequest) (*ListLikedYouResponse, error)
	CountLikedYou(context.Context, *CountLikedYouRequest) (*CountLikedYouResponse, error)
	ScoreCompatibility(context.Context, *ScoreCompatibilityRequest) (*ScoreCompatibilityResponse, error)
	PutNatalChart(context.Context, *PutNatalChartRequest) (*PutNatalChartResponse, error)
	PutQuestionnaire(context.Context, *PutQuestionnaireRequest) (*PutQuestionnaireResponse, error)
	CheckEligibility(context.Context, *CheckEligibilityRequest) (*CheckEligibilityResponse, error)
}

var _ MatchmakingServer = (*Service)(nil)

// unary builds a MethodDesc for one RPC. Messages are decoded by whichever
// codec the call was made with (see server.CodecName).
func unary[Req, Resp any](name string, call func(MatchmakingServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MatchmakingServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MatchmakingServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes matchmaking.v1.MatchmakingService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchmakingServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("RecordSwipe", MatchmakingServer.RecordSwipe),
		unary("RespondToMatchRequest", MatchmakingServer.RespondToMatchRequest),
		unary("CreateMatchRequest", MatchmakingServer.CreateMatchRequest),
		unary("ListPendingMatchRequests", MatchmakingServer.ListPendingMatchRequests),
		unary("GetMatch", MatchmakingServer.GetMatch),
		unary("ListMatches", MatchmakingServer.ListMatches),
		unary("ListLikedYou", MatchmakingServer.ListLikedYou),
		unary("ListNewLikedYou", MatchmakingServer.ListNewLikedYou),
		unary("CountLikedYou", MatchmakingServer.CountLikedYou),
		unary("ScoreCompatibility", MatchmakingServer.ScoreCompatibility),
		unary("PutNatalChart", MatchmakingServer.PutNatalChart),
		unary("PutQuestionnaire", MatchmakingServer.PutQuestionnaire),
		unary("CheckEligibility", MatchmakingServer.CheckEligibility),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "matchmaking/v1",
}

// Registrar ties the Matchmaking service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Matchmaking service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Matchmaking service implementation to the gRPC server
func (r *Registrar) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&ServiceDesc, NewMatchmakingService(r.appCtx))
}
