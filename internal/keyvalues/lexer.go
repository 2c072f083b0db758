// Package keyvalues reads the nested key/value text format used by material
// descriptions and level entity lumps.
package keyvalues

import (
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	tokenOpen = iota
	tokenClose
	tokenString
	tokenWord
	tokenCondition
	tokenComment
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`{`), getToken(tokenOpen))
	lexer.Add([]byte(`}`), getToken(tokenClose))
	lexer.Add([]byte(`"[^"]*"`), getToken(tokenString))
	lexer.Add([]byte(`\[!?\$[^\]]*\]`), getToken(tokenCondition))
	lexer.Add([]byte(`//[^\n]*`), getToken(tokenComment))
	lexer.Add([]byte(`[^ \t\r\n"{}]+`), getToken(tokenWord))
	lexer.Add([]byte(`[ \t\r\n]+`), skip)
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}
