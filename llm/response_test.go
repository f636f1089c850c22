package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{name: "nil", resp: nil, want: ""},
		{name: "plain", resp: PlainText("hello"), want: "hello"},
		{name: "wrapped", resp: WrappedText{Content: "inner", Role: "assistant"}, want: "inner"},
		{name: "wrapped pointer", resp: &WrappedText{Content: "ptr"}, want: "ptr"},
		{name: "nil wrapped pointer", resp: (*WrappedText)(nil), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.resp))
		})
	}
}

func TestModelFunc(t *testing.T) {
	var got string
	m := ModelFunc(func(_ context.Context, prompt string) (Response, error) {
		got = prompt
		return PlainText("answer"), nil
	})

	resp, err := m.Invoke(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "question", got)
	assert.Equal(t, "answer", Text(resp))
}
