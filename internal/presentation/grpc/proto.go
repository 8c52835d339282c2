package grpc

// proto.go defines the gRPC server interface derived from
// credimart/lending/v1/lending.proto. This file serves as a stand-in for
// buf-generated code. Once `buf generate` is run, replace this file with the
// import from github.com/credimart/lending-service/api/gen/go/credimart/lending/v1.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Wire messages. Monetary values travel as decimal strings.

type Offer struct {
	Amount       string `json:"amount"`
	InterestRate string `json:"interest_rate"`
	PeriodDays   int    `json:"period_days"`
}

type Loan struct {
	Id           string `json:"id"`
	BorrowerId   string `json:"borrower_id"`
	Amount       string `json:"amount"`
	AmountDue    string `json:"amount_due"`
	AmountPaid   string `json:"amount_paid"`
	Outstanding  string `json:"outstanding"`
	InterestRate string `json:"interest_rate"`
	PeriodDays   int    `json:"period_days"`
	Status       string `json:"status"`
	DueDate      string `json:"due_date"`
	CreatedAt    string `json:"created_at"`
}

type ComputeOfferRequest struct {
	BorrowerId string `json:"borrower_id"`
	Channel    string `json:"channel"`
}

type ComputeOfferResponse struct {
	SessionKey     string  `json:"session_key"`
	EligibleAmount string  `json:"eligible_amount"`
	Offers         []Offer `json:"offers"`
	ExpiresAt      string  `json:"expires_at"`
}

type AcceptOfferRequest struct {
	BorrowerId string `json:"borrower_id"`
	SessionKey string `json:"session_key"`
	Amount     string `json:"amount"`
	Channel    string `json:"channel"`
}

type AcceptOfferResponse struct {
	Loan         *Loan `json:"loan"`
	Deduplicated bool  `json:"deduplicated"`
}

type RecordRepaymentRequest struct {
	TransactionId string `json:"transaction_id"`
	LoanId        string `json:"loan_id"`
}

type RecordRepaymentResponse struct {
	PointsAwarded    int    `json:"points_awarded"`
	NewScore         int    `json:"new_score"`
	Reason           string `json:"reason"`
	LoanStatus       string `json:"loan_status"`
	AlreadyProcessed bool   `json:"already_processed"`
}

type GetLoanRequest struct {
	LoanId string `json:"loan_id"`
}

type GetLoanResponse struct {
	Loan *Loan `json:"loan"`
}

// LendingServiceServer is the server API for LendingService.
// It mirrors the proto-generated interface from credimart.lending.v1.LendingService.
type LendingServiceServer interface {
	ComputeOffer(context.Context, *ComputeOfferRequest) (*ComputeOfferResponse, error)
	AcceptOffer(context.Context, *AcceptOfferRequest) (*AcceptOfferResponse, error)
	RecordRepayment(context.Context, *RecordRepaymentRequest) (*RecordRepaymentResponse, error)
	GetLoan(context.Context, *GetLoanRequest) (*GetLoanResponse, error)
	mustEmbedUnimplementedLendingServiceServer()
}

// UnimplementedLendingServiceServer provides forward-compatible default implementations.
type UnimplementedLendingServiceServer struct{}

func (UnimplementedLendingServiceServer) ComputeOffer(context.Context, *ComputeOfferRequest) (*ComputeOfferResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ComputeOffer not implemented")
}
func (UnimplementedLendingServiceServer) AcceptOffer(context.Context, *AcceptOfferRequest) (*AcceptOfferResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AcceptOffer not implemented")
}
func (UnimplementedLendingServiceServer) RecordRepayment(context.Context, *RecordRepaymentRequest) (*RecordRepaymentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RecordRepayment not implemented")
}
func (UnimplementedLendingServiceServer) GetLoan(context.Context, *GetLoanRequest) (*GetLoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetLoan not implemented")
}
func (UnimplementedLendingServiceServer) mustEmbedUnimplementedLendingServiceServer() {}

// RegisterLendingServiceServer registers the LendingServiceServer with the gRPC server.
func RegisterLendingServiceServer(s *grpclib.Server, srv LendingServiceServer) {
	s.RegisterService(&_LendingService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _LendingService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: "credimart.lending.v1.LendingService",
	HandlerType: (*LendingServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "ComputeOffer", Handler: _LendingService_ComputeOffer_Handler},       //nolint:revive // gRPC handler registration
		{MethodName: "AcceptOffer", Handler: _LendingService_AcceptOffer_Handler},         //nolint:revive // gRPC handler registration
		{MethodName: "RecordRepayment", Handler: _LendingService_RecordRepayment_Handler}, //nolint:revive // gRPC handler registration
		{MethodName: "GetLoan", Handler: _LendingService_GetLoan_Handler},                 //nolint:revive // gRPC handler registration
	},
	Streams: []grpclib.StreamDesc{},
}

//nolint:revive,errcheck // gRPC handler registration
func _LendingService_ComputeOffer_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ComputeOfferRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LendingServiceServer).ComputeOffer(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/credimart.lending.v1.LendingService/ComputeOffer",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LendingServiceServer).ComputeOffer(ctx, req.(*ComputeOfferRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _LendingService_AcceptOffer_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(AcceptOfferRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LendingServiceServer).AcceptOffer(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/credimart.lending.v1.LendingService/AcceptOffer",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LendingServiceServer).AcceptOffer(ctx, req.(*AcceptOfferRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _LendingService_RecordRepayment_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(RecordRepaymentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LendingServiceServer).RecordRepayment(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/credimart.lending.v1.LendingService/RecordRepayment",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LendingServiceServer).RecordRepayment(ctx, req.(*RecordRepaymentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _LendingService_GetLoan_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetLoanRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LendingServiceServer).GetLoan(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/credimart.lending.v1.LendingService/GetLoan",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LendingServiceServer).GetLoan(ctx, req.(*GetLoanRequest))
	}
	return interceptor(ctx, in, info, handler)
}
