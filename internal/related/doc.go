// Package related resolves the files related to a source file.
//
// Given a path such as dir/Test.m, the finder combines two candidate sources:
// a built-in naming heuristic over the sibling files in the same directory
// (header/implementation pairs, Internal and -inl split files, editor backup
// files) and any providers registered with the provider registry. Provider
// queries are raced against a timeout so the lookup completes in bounded time
// no matter how the providers behave.
//
// The queried file is always part of its own result; Result.Index reports its
// position in the final ordering so callers can cycle through the set.
package related
