package model

import (
	"slices"
	"strings"

	"github.com/maxbolgarin/errm"
)

// Category is a label from the closed taxonomy of bug and change types
type Category string

// Taxonomy in declaration order. The order is the tie-break when a message matches several categories.
const (
	CategoryMemoryLeak          Category = "Memory Leak"
	CategoryBufferOverflow      Category = "Buffer Overflow"
	CategoryDanglingPointer     Category = "Dangling Pointer"
	CategoryRaceCondition       Category = "Race Condition"
	CategoryDeadlock            Category = "Deadlock"
	CategoryNullPointerDeref    Category = "Null Pointer Dereference"
	CategoryResourceLeak        Category = "Resource Leak"
	CategoryConditionError      Category = "Condition Error"
	CategoryLoopBoundary        Category = "Loop Boundary"
	CategoryIntegerOverflow     Category = "Integer Overflow"
	CategoryFormatString        Category = "Format String"
	CategoryInputValidation     Category = "Input Validation"
	CategoryAlgorithmEfficiency Category = "Algorithm Efficiency"
	CategoryConfigurationError  Category = "Configuration Error"
	CategoryNonBugFix           Category = "Non-Bug Fix"
)

// CategoryGroup is a coarse group of categories
type CategoryGroup string

const (
	GroupMemorySafety CategoryGroup = "Memory Safety"
	GroupConcurrency  CategoryGroup = "Concurrency"
	GroupSystemError  CategoryGroup = "System Error"
	GroupLogicError   CategoryGroup = "Logic Error"
	GroupSecurity     CategoryGroup = "Security"
	GroupPerformance  CategoryGroup = "Performance"
	GroupOther        CategoryGroup = "Other"
)

var taxonomy = []Category{
	CategoryMemoryLeak,
	CategoryBufferOverflow,
	CategoryDanglingPointer,
	CategoryRaceCondition,
	CategoryDeadlock,
	CategoryNullPointerDeref,
	CategoryResourceLeak,
	CategoryConditionError,
	CategoryLoopBoundary,
	CategoryIntegerOverflow,
	CategoryFormatString,
	CategoryInputValidation,
	CategoryAlgorithmEfficiency,
	CategoryConfigurationError,
	CategoryNonBugFix,
}

var categoryGroups = map[Category]CategoryGroup{
	CategoryMemoryLeak:          GroupMemorySafety,
	CategoryBufferOverflow:      GroupMemorySafety,
	CategoryDanglingPointer:     GroupMemorySafety,
	CategoryRaceCondition:       GroupConcurrency,
	CategoryDeadlock:            GroupConcurrency,
	CategoryNullPointerDeref:    GroupSystemError,
	CategoryResourceLeak:        GroupSystemError,
	CategoryConditionError:      GroupLogicError,
	CategoryLoopBoundary:        GroupLogicError,
	CategoryIntegerOverflow:     GroupLogicError,
	CategoryFormatString:        GroupSecurity,
	CategoryInputValidation:     GroupSecurity,
	CategoryAlgorithmEfficiency: GroupPerformance,
	CategoryConfigurationError:  GroupOther,
	CategoryNonBugFix:           GroupOther,
}

var categoryByKey = func() map[string]Category {
	out := make(map[string]Category, len(taxonomy))
	for _, c := range taxonomy {
		out[categoryKey(string(c))] = c
	}
	return out
}()

// Taxonomy returns all categories in declaration order
func Taxonomy() []Category {
	return slices.Clone(taxonomy)
}

// ParseCategory returns a category by its name.
// Case, dashes and underscores are ignored: "non_bug_fix" and "NON-BUG FIX" both give CategoryNonBugFix.
func ParseCategory(s string) (Category, error) {
	c, ok := categoryByKey[categoryKey(s)]
	if !ok {
		return "", errm.Wrap(ErrUnknownCategory, s)
	}
	return c, nil
}

// IsValid returns true if category belongs to the taxonomy
func (c Category) IsValid() bool {
	_, ok := categoryGroups[c]
	return ok
}

// IsBugFix returns true for every valid category except Non-Bug Fix
func (c Category) IsBugFix() bool {
	return c.IsValid() && c != CategoryNonBugFix
}

// Index returns position of category in the taxonomy or -1 if it is not valid
func (c Category) Index() int {
	return slices.Index(taxonomy, c)
}

// Group returns a group of the category, Other for unknown categories
func (c Category) Group() CategoryGroup {
	if g, ok := categoryGroups[c]; ok {
		return g
	}
	return GroupOther
}

func (c Category) String() string {
	return string(c)
}

func categoryKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
