// Copyright 2025 Occlab
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package match ranks taxonomy entities against free-text job
// descriptions.
//
// A match embeds the description twice: once whole, for profile-level
// similarity, and once as responsibility segments, for duty-level
// matching. Each taxonomy duty is paired with its best-matching
// segment; duties above a relevance threshold contribute to their
// entity's duty score. The final ranking combines both granularities
// with configurable weights, favoring duty-level specificity.
package match
