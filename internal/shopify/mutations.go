package shopify

// TagsAddMutation adds tags to any taggable resource (orders here)
const TagsAddMutation = `
mutation tagsAdd($id: ID!, $tags: [String!]!) {
  tagsAdd(id: $id, tags: $tags) {
    node {
      id
    }
    userErrors {
      field
      message
    }
  }
}
`
