package classifier

import "github.com/maxbolgarin/commitminer/internal/model"

// Rule binds keyword patterns to a category. Patterns are matched as case-insensitive substrings.
type Rule struct {
	Category model.Category `yaml:"category"`
	Keywords []string       `yaml:"keywords"`
}

// DefaultRules returns the built-in keyword table in taxonomy order.
// Bare words like "leak", "race" or "hang" are avoided because they occur inside unrelated words.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: model.CategoryMemoryLeak,
			Keywords: []string{"memory leak", "memleak", "mem leak", "leaks memory", "leaking memory", "leaked memory", "内存泄漏", "内存泄露"},
		},
		{
			Category: model.CategoryBufferOverflow,
			Keywords: []string{
				"buffer overflow", "buffer overrun", "stack overflow", "heap overflow", "overrun",
				"out of bounds", "out-of-bounds", "oob read", "oob write", "overread", "over-read",
				"缓冲区溢出", "越界",
			},
		},
		{
			Category: model.CategoryDanglingPointer,
			Keywords: []string{"use after free", "use-after-free", "double free", "double-free", "dangling", "freed memory", "悬空指针", "野指针", "释放后使用"},
		},
		{
			Category: model.CategoryRaceCondition,
			Keywords: []string{"race condition", "data race", "thread safety", "thread-safe", "thread safe", "threadsafe", "tsan", "竞态", "数据竞争"},
		},
		{
			Category: model.CategoryDeadlock,
			Keywords: []string{"deadlock", "dead lock", "livelock", "lock ordering", "lock inversion", "死锁"},
		},
		{
			Category: model.CategoryNullPointerDeref,
			Keywords: []string{
				"null pointer", "null-pointer", "null deref", "null dereference", "nullptr", "null ptr",
				"segfault", "segmentation fault", "check for null", "null check", "空指针",
			},
		},
		{
			Category: model.CategoryResourceLeak,
			Keywords: []string{
				"resource leak", "fd leak", "file descriptor leak", "handle leak", "socket leak",
				"leaked fd", "leaks fd", "leaking fd", "unclosed", "资源泄漏", "句柄泄漏",
			},
		},
		{
			Category: model.CategoryConditionError,
			Keywords: []string{
				"wrong condition", "incorrect condition", "inverted condition", "logic error", "logic bug",
				"wrong comparison", "incorrect comparison", "always true", "always false", "条件错误", "判断错误",
			},
		},
		{
			Category: model.CategoryLoopBoundary,
			Keywords: []string{"off-by-one", "off by one", "infinite loop", "endless loop", "loop bound", "loop condition", "fencepost", "死循环", "循环边界"},
		},
		{
			Category: model.CategoryIntegerOverflow,
			Keywords: []string{"integer overflow", "int overflow", "integer underflow", "arithmetic overflow", "signed overflow", "wraparound", "wrap around", "sign extension", "整数溢出"},
		},
		{
			Category: model.CategoryFormatString,
			Keywords: []string{"format string", "format-string", "format specifier", "printf format", "wformat", "格式化字符串"},
		},
		{
			Category: model.CategoryInputValidation,
			Keywords: []string{
				"input validation", "validate input", "unvalidated", "invalid input", "sanitize", "sanitise",
				"malformed", "untrusted input", "missing validation", "injection", "输入验证", "参数校验",
			},
		},
		{
			Category: model.CategoryAlgorithmEfficiency,
			Keywords: []string{"performance", "speed up", "speedup", "faster", "optimiz", "optimis", "quadratic", "complexity", "性能", "优化"},
		},
		{
			Category: model.CategoryConfigurationError,
			Keywords: []string{
				"configuration error", "config error", "misconfig", "wrong config", "incorrect config",
				"fix build", "build failure", "build error", "compile error", "compilation error", "配置错误",
			},
		},
	}
}
