// Package cipher implements textbook RSA encryption and its two decryption
// paths.
//
//	c, _ := cipher.Encrypt(m, kp.PublicKey())   // m^e mod n
//	m1, _ := cipher.Decrypt(c, kp.D(), kp.N())  // c^d mod n
//	m2, _ := cipher.DecryptCRT(c, kp)           // same result via p and q
//
// There is no padding. A message is an integer and is reduced modulo n during
// encryption, so only messages in [0, n) round-trip unchanged. Deterministic
// unpadded RSA is malleable and must not protect real data.
package cipher
