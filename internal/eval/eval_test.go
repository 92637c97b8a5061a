package eval_test

import (
	"testing"

	"github.com/phillarmonic/mockscript/internal/eval"
	"github.com/phillarmonic/mockscript/internal/parser"
	"github.com/phillarmonic/mockscript/internal/preprocess"
	"github.com/phillarmonic/mockscript/internal/runtime"
	"github.com/phillarmonic/mockscript/internal/value"
)

func compile(t *testing.T, src string) *eval.Result {
	t.Helper()
	program, err := parser.Parse("test.ms", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if err := preprocess.Run(program); err != nil {
		t.Fatalf("preprocess error: %v", err)
	}
	ctx := runtime.NewEvalCtx(&runtime.Globals{}, &runtime.RequestSnapshot{
		Body:    value.Object{},
		Params:  value.Object{},
		Query:   value.Object{},
		Headers: value.Object{},
	})
	result, err := eval.Evaluate(ctx, program)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return &result
}

func TestReturnStatus(t *testing.T) {
	r := compile(t, `return 200, "ok";`)
	if r.Status != 200 {
		t.Errorf("expected status 200, got %d", r.Status)
	}
	if r.Body != value.String("ok") {
		t.Errorf("expected body \"ok\", got %v", r.Body)
	}
}

func TestArithmeticPrecedence(t *testing.T) {
	r := compile(t, `let x: num = 2 + 3 * 4; return 200, x;`)
	if r.Body != value.Number(14) {
		t.Errorf("expected 14, got %v", r.Body)
	}
}

func TestIfElse(t *testing.T) {
	r := compile(t, `
		let x: num = 5;
		if (x > 3) {
			return 200, "big";
		} else {
			return 200, "small";
		}
	`)
	if r.Body != value.String("big") {
		t.Errorf("expected \"big\", got %v", r.Body)
	}
}

func TestForLoopAccumulates(t *testing.T) {
	r := compile(t, `
		let total: num = 0;
		for (let i: num = 0; i < 5; i = i + 1) {
			total = total + i;
		}
		return 200, total;
	`)
	if r.Body != value.Number(10) {
		t.Errorf("expected 10, got %v", r.Body)
	}
}

func TestForLoopBreak(t *testing.T) {
	r := compile(t, `
		let total: num = 0;
		for (let i: num = 0; i < 100; i = i + 1) {
			if (i == 3) {
				break;
			}
			total = total + 1;
		}
		return 200, total;
	`)
	if r.Body != value.Number(3) {
		t.Errorf("expected 3, got %v", r.Body)
	}
}

func TestUserFunctionCall(t *testing.T) {
	r := compile(t, `
		func double(n: num): num {
			return n * 2;
		}
		return 200, double(21);
	`)
	if r.Body != value.Number(42) {
		t.Errorf("expected 42, got %v", r.Body)
	}
}

func TestArrayPushMutatesVariable(t *testing.T) {
	r := compile(t, `
		let items: vec<num> = [1, 2];
		items.push(3);
		return 200, items;
	`)
	arr, ok := r.Body.(value.Array)
	if !ok || len(arr) != 3 {
		t.Fatalf("expected a 3-element array, got %v", r.Body)
	}
	if arr[2] != value.Number(3) {
		t.Errorf("expected last element 3, got %v", arr[2])
	}
}

func TestStringMethods(t *testing.T) {
	r := compile(t, `
		let s: str = "hello world";
		return 200, s.contains("world");
	`)
	if r.Body != value.Bool(true) {
		t.Errorf("expected true, got %v", r.Body)
	}
}

func TestTemplateInterpolation(t *testing.T) {
	r := compile(t, `
		let name: str = "Ava";
		return 200, ` + "`hi ${name}!`" + `;
	`)
	if r.Body != value.String("hi Ava!") {
		t.Errorf("expected \"hi Ava!\", got %v", r.Body)
	}
}

func TestSwitchStatement(t *testing.T) {
	r := compile(t, `
		let n: num = 2;
		switch (n) {
			case 1:
				return 200, "one";
			case 2:
				return 200, "two";
			default:
				return 200, "many";
		}
	`)
	if r.Body != value.String("two") {
		t.Errorf("expected \"two\", got %v", r.Body)
	}
}

func TestDeepLvalueMutation(t *testing.T) {
	r := compile(t, `
		let o: obj = {"a": {"b": [1, 2, 3]}};
		o.a.b[1] = 99;
		return 200, o;
	`)
	obj, ok := r.Body.(value.Object)
	if !ok {
		t.Fatalf("expected object, got %v", r.Body)
	}
	inner, ok := obj["a"].(value.Object)
	if !ok {
		t.Fatalf("expected nested object, got %v", obj["a"])
	}
	arr, ok := inner["b"].(value.Array)
	if !ok || len(arr) != 3 {
		t.Fatalf("expected 3-element array, got %v", inner["b"])
	}
	if arr[1] != value.Number(99) {
		t.Errorf("expected 99, got %v", arr[1])
	}
}
