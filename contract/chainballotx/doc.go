// Package chainballotx binds the ChainBallotX voting contract: the embedded ABI, the argument
// and return value codec, a view reader with placeholder fallbacks and a builder of unsigned
// transactions for the contract endpoints.
package chainballotx
