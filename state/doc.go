// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the layered account state.
// It follows the flow as bellow:
//
//	[ child layer ] -- Commit --> [ parent layer ] ... [ root layer ]
//	                                                        |
//	                                        Commit (detach to flushing map)
//	                                                        |
//	                                                  [ kv.Bulk write ]
//
// Reads go through the local map of each layer down to the durable store.
// Writes only touch the local map of the layer they're issued on.
package state
