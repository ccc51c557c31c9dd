/*
Package forumfeatures extracts quantitative features from archived web
forum discussions, for use in post and user role classification.

It provides an in-memory corpus model (forums, threads, posts, authors), a
rule-based sentence tokenizer, thread partitioning, several published
feature methodologies (ADCS thread vectors, Wanas surface features,
CoNLL-2010 structural features), social-network builders over authors and
threads, and a persistent cache for expensive network artifacts.
*/
package forumfeatures
