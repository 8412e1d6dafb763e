package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage_Render(t *testing.T) {
	conf := NewTestConfig()

	tests := []struct {
		name     string
		msg      EmailMessage
		wantErr  bool
		wantText []string
		wantHTML []string
	}{
		{name: "plain body", msg: EmailMessage{BodyStr: "hello"}, wantText: []string{"hello"}},
		{name: "unknown template", msg: EmailMessage{TemplateName: "lol"}, wantErr: true},
		{
			name: "welcome",
			msg: EmailMessage{
				TemplateName: "welcome",
				TemplateData: map[string]interface{}{"FullName": "Ann Lee", "Username": "annlee2026", "CourseName": "React Fundamentals"},
			},
			wantText: []string{"Hi Ann Lee,", "Username: annlee2026", "Course: React Fundamentals", "http://localhost:3000/login", "The Upskill Global team"},
			wantHTML: []string{"<strong>annlee2026</strong>", `href="http://localhost:3000/login"`},
		},
		{
			name: "welcome, missing key",
			msg: EmailMessage{
				TemplateName: "welcome",
				TemplateData: map[string]interface{}{"FullName": "Ann Lee"},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Render(conf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.msg.HasContent())
			for _, s := range tt.wantText {
				assert.Contains(t, tt.msg.TextContent, s)
			}
			for _, s := range tt.wantHTML {
				assert.Contains(t, tt.msg.HTMLContent, s)
			}
		})
	}
}
