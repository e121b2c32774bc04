package shopify

// orderFields is the order selection shared by the order queries
const orderFields = `
        id
        name
        poNumber
        processedAt
        createdAt
        updatedAt
        tags
        displayFinancialStatus
        displayFulfillmentStatus
        totalPriceSet {
          shopMoney {
            amount
            currencyCode
          }
        }
        channelInformation {
          channelDefinition {
            channelName
            handle
          }
        }
        customer {
          displayName
        }
        shippingAddress {
          name
          address1
          address2
          city
          province
          country
          zip
        }
        shippingLines(first: 1) {
          edges {
            node {
              code
              title
            }
          }
        }
        lineItems(first: 100) {
          edges {
            node {
              sku
              quantity
              customAttributes {
                key
                value
              }
            }
          }
        }
`

// OrdersQuery pages through orders, newest first. $query uses Shopify search syntax
// (e.g. "updated_at:>=2024-03-01").
const OrdersQuery = `
query getOrders($first: Int!, $after: String, $query: String) {
  orders(first: $first, after: $after, query: $query, sortKey: PROCESSED_AT, reverse: true) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {` + orderFields + `      }
    }
  }
}
`

// OrderByIDQuery fetches a single order by GID
const OrderByIDQuery = `
query getOrderByID($id: ID!) {
  node(id: $id) {
    ... on Order {` + orderFields + `    }
  }
}
`

// ShopQuery is a cheap connectivity check
const ShopQuery = `
query {
  shop {
    name
    myshopifyDomain
  }
}
`
