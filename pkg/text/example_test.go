package text_test

import (
	"fmt"

	"github.com/walteh/searchreplace/pkg/text"
)

func ExampleRule_ScanLine() {
	replacement := "fooBAZ"
	rule, err := text.NewRule(text.Spec{Raw: "foobar"}, &replacement, "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	occurrences, rewritten, err := rule.ScanLine("bad_content.txt", 4, "Here's one: foobar\n")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, o := range occurrences {
		fmt.Printf("line %d, col %d, length %d\n", o.Line, o.Column, o.Length)
	}
	fmt.Print(rewritten)

	// Output:
	// line 4, col 13, length 6
	// Here's one: fooBAZ
}

func ExampleCompile() {
	for _, raw := range []string{"foo.*bar", "/foo.*bar/"} {
		p, err := text.Compile(text.Spec{Raw: raw})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("%s regex=%v\n", raw, p.IsRegex())
	}

	// Output:
	// foo.*bar regex=false
	// /foo.*bar/ regex=true
}
