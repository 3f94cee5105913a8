package compiler

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWriteParseXML(t *testing.T) {
	src := `
	class Main {
		field int x, y;

		method void f(int a) {
			var Array b;
			let b[a] = -x;
			if (a < 1) {
				do Output.printInt(a);
			} else {
				return;
			}
			return;
		}
	}`

	want := `<class>
  <keyword> class </keyword>
  <identifier> Main </identifier>
  <symbol> { </symbol>
  <classVarDec>
    <keyword> field </keyword>
    <keyword> int </keyword>
    <identifier> x </identifier>
    <symbol> , </symbol>
    <identifier> y </identifier>
    <symbol> ; </symbol>
  </classVarDec>
  <subroutineDec>
    <keyword> method </keyword>
    <keyword> void </keyword>
    <identifier> f </identifier>
    <symbol> ( </symbol>
    <parameterList>
      <keyword> int </keyword>
      <identifier> a </identifier>
    </parameterList>
    <symbol> ) </symbol>
    <subroutineBody>
      <symbol> { </symbol>
      <varDec>
        <keyword> var </keyword>
        <identifier> Array </identifier>
        <identifier> b </identifier>
        <symbol> ; </symbol>
      </varDec>
      <statements>
        <letStatement>
          <keyword> let </keyword>
          <identifier> b </identifier>
          <symbol> [ </symbol>
          <expression>
            <term>
              <identifier> a </identifier>
            </term>
          </expression>
          <symbol> ] </symbol>
          <symbol> = </symbol>
          <expression>
            <term>
              <symbol> - </symbol>
              <term>
                <identifier> x </identifier>
              </term>
            </term>
          </expression>
          <symbol> ; </symbol>
        </letStatement>
        <ifStatement>
          <keyword> if </keyword>
          <symbol> ( </symbol>
          <expression>
            <term>
              <identifier> a </identifier>
            </term>
            <symbol> &lt; </symbol>
            <term>
              <integerConstant> 1 </integerConstant>
            </term>
          </expression>
          <symbol> ) </symbol>
          <symbol> { </symbol>
          <statements>
            <doStatement>
              <keyword> do </keyword>
              <identifier> Output </identifier>
              <symbol> . </symbol>
              <identifier> printInt </identifier>
              <symbol> ( </symbol>
              <expressionList>
                <expression>
                  <term>
                    <identifier> a </identifier>
                  </term>
                </expression>
              </expressionList>
              <symbol> ) </symbol>
              <symbol> ; </symbol>
            </doStatement>
          </statements>
          <symbol> } </symbol>
          <keyword> else </keyword>
          <symbol> { </symbol>
          <statements>
            <returnStatement>
              <keyword> return </keyword>
              <symbol> ; </symbol>
            </returnStatement>
          </statements>
          <symbol> } </symbol>
        </ifStatement>
        <returnStatement>
          <keyword> return </keyword>
          <symbol> ; </symbol>
        </returnStatement>
      </statements>
      <symbol> } </symbol>
    </subroutineBody>
  </subroutineDec>
  <symbol> } </symbol>
</class>
`

	var buf bytes.Buffer
	if err := WriteParseXML(&buf, strings.NewReader(src)); err != nil {
		t.Fatalf("WriteParseXML failed: %v", err)
	}
	if got := buf.String(); got != want {
		t.Errorf("parse tree mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteParseXMLFragments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "empty parameter list and statements",
			src:  `class A { function void f() { } }`,
			want: []string{
				"    <parameterList>\n    </parameterList>\n",
				"      <statements>\n      </statements>\n",
			},
		},
		{
			name: "while with nested call term",
			src: `class A {
				function void f() {
					while (~(Keyboard.keyPressed() = 0)) { }
					return;
				}
			}`,
			want: []string{
				"<whileStatement>\n",
				"<symbol> ~ </symbol>\n",
				"<identifier> Keyboard </identifier>\n",
				"<identifier> keyPressed </identifier>\n",
				"<expressionList>\n",
				"</whileStatement>\n",
			},
		},
		{
			name: "string constant is escaped",
			src: `class A {
				function String f() {
					return "a<b & c";
				}
			}`,
			want: []string{
				"<stringConstant> a&lt;b &amp; c </stringConstant>\n",
			},
		},
		{
			name: "undeclared names are accepted",
			src: `class A {
				function void f() {
					let z = q[r];
					do n.grow();
					return;
				}
			}`,
			want: []string{
				"<identifier> z </identifier>\n",
				"<identifier> q </identifier>\n",
				"<identifier> grow </identifier>\n",
			},
		},
		{
			name: "redeclaration is accepted",
			src:  `class A { field int x; static int x; }`,
			want: []string{
				"  <classVarDec>\n    <keyword> static </keyword>\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteParseXML(&buf, strings.NewReader(tt.src)); err != nil {
				t.Fatalf("WriteParseXML failed: %v", err)
			}
			got := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q in:\n%s", w, got)
				}
			}
		})
	}
}

func TestWriteParseXMLSyntaxError(t *testing.T) {
	var buf bytes.Buffer
	err := WriteParseXML(&buf, strings.NewReader(`class A {
		function void f() {
			let x = ;
		}
	}`))
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if !strings.Contains(err.Error(), "|> let x = ;") {
		t.Errorf("expected source snippet in %q", err.Error())
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output on failure, got:\n%s", buf.String())
	}
}
