package matchmaking

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/muzz-matchmaking/internal/server"
)

// Client calls matchmaking.v1.MatchmakingService over an existing connection
// using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(server.CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *Client) RecordSwipe(ctx context.Context, in *RecordSwipeRequest, opts ...grpc.CallOption) (*RecordSwipeResponse, error) {
	out := new(RecordSwipeResponse)
	if err := c.invoke(ctx, "RecordSwipe", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RespondToMatchRequest(ctx context.Context, in *RespondToMatchRequestRequest, opts ...grpc.CallOption) (*RespondToMatchRequestResponse, error) {
	out := new(RespondToMatchRequestResponse)
	if err := c.invoke(ctx, "RespondToMatchRequest", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateMatchRequest(ctx context.Context, in *CreateMatchRequestRequest, opts ...grpc.CallOption) (*CreateMatchRequestResponse, error) {
	out := new(CreateMatchRequestResponse)
	if err := c.invoke(ctx, "CreateMatchRequest", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPendingMatchRequests(ctx context.Context, in *ListPendingMatchRequestsRequest, opts ...grpc.CallOption) (*ListPendingMatchRequestsResponse, error) {
	out := new(ListPendingMatchRequestsResponse)
	if err := c.invoke(ctx, "ListPendingMatchRequests", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMatch(ctx context.Context, in *GetMatchRequest, opts ...grpc.CallOption) (*GetMatchResponse, error) {
	out := new(GetMatchResponse)
	if err := c.invoke(ctx, "GetMatch", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error) {
	out := new(ListMatchesResponse)
	if err := c.invoke(ctx, "ListMatches", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListLikedYou(ctx context.Context, in *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error) {
	out := new(ListLikedYouResponse)
	if err := c.invoke(ctx, "ListLikedYou", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListNewLikedYou(ctx context.Context, in *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error) {
	out := new(ListLikedYouResponse)
	if err := c.invoke(ctx, "ListNewLikedYou", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CountLikedYou(ctx context.Context, in *CountLikedYouRequest, opts ...grpc.CallOption) (*CountLikedYouResponse, error) {
	out := new(CountLikedYouResponse)
	if err := c.invoke(ctx, "CountLikedYou", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ScoreCompatibility(ctx context.Context, in *ScoreCompatibilityRequest, opts ...grpc.CallOption) (*ScoreCompatibilityResponse, error) {
	out := new(ScoreCompatibilityResponse)
	if err := c.invoke(ctx, "ScoreCompatibility", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PutNatalChart(ctx context.Context, in *PutNatalChartRequest, opts ...grpc.CallOption) (*PutNatalChartResponse, error) {
	out := new(PutNatalChartResponse)
	if err := c.invoke(ctx, "PutNatalChart", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PutQuestionnaire(ctx context.Context, in *PutQuestionnaireRequest, opts ...grpc.CallOption) (*PutQuestionnaireResponse, error) {
	out := new(PutQuestionnaireResponse)
	if err := c.invoke(ctx, "PutQuestionnaire", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CheckEligibility(ctx context.Context, in *CheckEligibilityRequest, opts ...grpc.CallOption) (*CheckEligibilityResponse, error) {
	out := new(CheckEligibilityResponse)
	if err := c.invoke(ctx, "CheckEligibility", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
