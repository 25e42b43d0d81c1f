// Package serialization provides the .born checkpoint format for model parameters.
//
//	Format Structure (v2):
//	  [0x00-0x03: Magic "BORN"]
//	  [0x04-0x07: Version (uint32 LE)]
//	  [0x08-0x0B: Flags (uint32 LE)]
//	  [0x0C-0x0F: Reserved]
//	  [0x10-0x17: Header Size (uint64 LE)]
//	  [0x18-0x1F: Data Size (uint64 LE)]
//	  [0x20-0x3F: SHA-256 of the tensor data]
//	  [Header: JSON metadata]
//	  [Tensor data: little-endian float64, 64-byte aligned]
//
// Tensors are written in name order, so saving the same parameters twice
// produces identical data sections.
//
// Example usage:
//
//	writer, err := serialization.NewBornWriter("model.born")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := writer.WriteStateDict(stateDict, "VAE", metadata); err != nil {
//	    log.Fatal(err)
//	}
//	writer.Close()
//
//	reader, err := serialization.NewBornReader("model.born")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//	stateDict, err := reader.ReadStateDict()
package serialization
