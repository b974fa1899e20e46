package loader

import (
	"errors"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

func TestStatusFromEval(t *testing.T) {
	tests := []struct {
		name string
		res  *proto.RuntimeRemoteObject
		err  error
		want int
	}{
		{
			name: "ok",
			res:  &proto.RuntimeRemoteObject{Value: gson.New(200)},
			want: 200,
		},
		{
			name: "not found",
			res:  &proto.RuntimeRemoteObject{Value: gson.New(404)},
			want: 404,
		},
		{
			name: "eval failed",
			err:  errors.New("context canceled"),
			want: 0,
		},
		{
			name: "nil result",
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFromEval(tt.res, tt.err); got != tt.want {
				t.Errorf("statusFromEval() = %d, want %d", got, tt.want)
			}
		})
	}
}
